package commands

import (
	"fmt"
	"os"

	"github.com/moolen/troubleshooter/internal/api"
	"github.com/moolen/troubleshooter/internal/logging"
	"github.com/spf13/cobra"
)

var (
	partitionJob    api.Job
	partitionChoice string
	partitionParent string
)

var partitionCmd = &cobra.Command{
	Use:   "partition",
	Short: "Resolve a job to its warehouse partition, or list fleet choices",
	Example: `  troubleshooter partition --serial SN42 --job J-17 --start "2024-03-01 08:00:00.000000"
  troubleshooter partition --choices serial_number
  troubleshooter partition --choices job_number --parent SN42`,
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

		out := cmd.OutOrStdout()
		if partitionChoice != "" {
			values, err := a.service.Choices(cmd.Context(), partitionChoice, partitionParent)
			if err != nil {
				return err
			}
			for _, v := range values {
				fmt.Fprintln(out, v)
			}
			return nil
		}

		id, err := a.service.ResolvePartition(cmd.Context(), partitionJob)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, id)
		return nil
	},
}

func init() {
	partitionCmd.Flags().StringVar(&partitionJob.SerialNumber, "serial", "", "Tool serial number")
	partitionCmd.Flags().StringVar(&partitionJob.JobNumber, "job", "", "Job number")
	partitionCmd.Flags().StringVar(&partitionJob.JobStart, "start", "", "Job start time")
	partitionCmd.Flags().StringVar(&partitionChoice, "choices", "", "List values of serial_number, job_number or job_start")
	partitionCmd.Flags().StringVar(&partitionParent, "parent", "", "Serial number for job_number choices, job number for job_start choices")
}
