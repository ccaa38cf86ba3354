package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/moolen/troubleshooter/internal/checks"
	"github.com/moolen/troubleshooter/internal/logging"
	"github.com/spf13/cobra"
)

var (
	checkPartition string
	checkChannel   string
)

var checkCmd = &cobra.Command{
	Use:   "check <name>",
	Short: "Run one diagnostic check",
	Long: `Run one diagnostic check by name against a partition and print true or false.

Checks: ` + strings.Join(checkNames(), ", "),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.SetOutput(os.Stderr)
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.service.RunCheck(cmd.Context(), args[0], checkPartition, checkChannel)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkPartition, "partition", "", "Warehouse partition id")
	checkCmd.Flags().StringVar(&checkChannel, "channel", "", "Data channel or event name for channel-scoped checks")
	_ = checkCmd.MarkFlagRequired("partition")
}

func checkNames() []string {
	defs := checks.Definitions()
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	return names
}
