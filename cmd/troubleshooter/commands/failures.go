package commands

import (
	"fmt"
	"os"

	"github.com/moolen/troubleshooter/internal/logging"
	"github.com/spf13/cobra"
)

var failuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "List the failure modes of the knowledge graph",
	RunE: func(cmd *cobra.Command, _ []string) error {
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

		labels, err := a.service.FailureLabels(cmd.Context())
		if err != nil {
			return err
		}
		for _, label := range labels {
			fmt.Fprintln(cmd.OutOrStdout(), label)
		}
		return nil
	},
}
