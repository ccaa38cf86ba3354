package commands

import (
	"os"

	"github.com/moolen/troubleshooter/internal/api"
	"github.com/moolen/troubleshooter/internal/logging"
	"github.com/spf13/cobra"
)

var (
	diagnoseFailure string
	diagnoseJob     api.Job
	diagnoseOutput  string
	diagnoseDepth   int
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Diagnose a failure for one job",
	Long: `Walk the causal graph of a failure mode, run the bound checks for the job and
print the confirmed root cause chains. The job is given by --partition, or by
--serial, --job and --start which are resolved through fleet metadata.`,
	Example: `  troubleshooter diagnose --failure "FNFM No Flow" --partition 2024_03_01_SN42
  troubleshooter diagnose --failure "FNFM No Flow" --serial SN42 --job J-17 --start "2024-03-01 08:00" -o report`,
	RunE: runDiagnose,
}

func init() {
	diagnoseCmd.Flags().StringVar(&diagnoseFailure, "failure", "", "Failure mode label")
	diagnoseCmd.Flags().StringVar(&diagnoseJob.PartitionID, "partition", "", "Warehouse partition id")
	diagnoseCmd.Flags().StringVar(&diagnoseJob.SerialNumber, "serial", "", "Tool serial number")
	diagnoseCmd.Flags().StringVar(&diagnoseJob.JobNumber, "job", "", "Job number")
	diagnoseCmd.Flags().StringVar(&diagnoseJob.JobStart, "start", "", "Job start time")
	diagnoseCmd.Flags().StringVarP(&diagnoseOutput, "output", "o", outputTable, "Output format: table, plain, report, json, yaml")
	diagnoseCmd.Flags().IntVar(&diagnoseDepth, "max-depth", -1, "Bound the causal walk; -1 is unbounded (overrides diagnosis.max_depth)")
	_ = diagnoseCmd.MarkFlagRequired("failure")
}

func runDiagnose(cmd *cobra.Command, _ []string) error {
	logging.SetOutput(os.Stderr)
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.Diagnosis.MaxDepth = diagnoseDepth
	}
	if err := validOutput(diagnoseOutput); err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.service.Diagnose(cmd.Context(), diagnoseJob, diagnoseFailure)
	if err != nil {
		return err
	}
	return renderReport(cmd.OutOrStdout(), report, diagnoseOutput, isTerminal(cmd.OutOrStdout()))
}
