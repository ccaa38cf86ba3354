package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/moolen/troubleshooter/internal/config"
	"github.com/moolen/troubleshooter/internal/logging"
	"github.com/spf13/cobra"
)

// Version is reported by --version and the MCP server
const Version = "0.1.0"

var (
	configPath      string
	logLevelFlags   []string
	ontologyPath    string
	warehouseDriver string
	warehouseDSN    string
)

var rootCmd = &cobra.Command{
	Use:   "troubleshooter",
	Short: "Troubleshooter - knowledge-graph guided equipment failure diagnosis",
	Long: `Troubleshooter walks the causal knowledge graph of an equipment failure mode,
runs the diagnostic checks bound to its triggers against the telemetry
warehouse for one job, and reports the root causes the data confirms.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringSliceVar(&logLevelFlags, "log-level", nil,
		"Log level for packages. Use 'level' for the default or 'package.name=level' per package.\n"+
			"Examples: --log-level debug, --log-level diagnosis=debug --log-level ontology.*=warn")
	rootCmd.PersistentFlags().StringVar(&ontologyPath, "ontology", "", "Turtle ontology file (overrides ontology.path)")
	rootCmd.PersistentFlags().StringVar(&warehouseDriver, "warehouse-driver", "", "Warehouse driver: postgres or sqlite (overrides warehouse.driver)")
	rootCmd.PersistentFlags().StringVar(&warehouseDSN, "warehouse-dsn", "", "Warehouse DSN (overrides warehouse.dsn)")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(failuresCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(partitionCmd)
	rootCmd.AddCommand(mcpCmd)
}

// loadConfig reads the config file, applies flag overrides, validates, and
// initializes logging
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("ontology") {
		cfg.Ontology.Backend = config.BackendFile
		cfg.Ontology.Path = ontologyPath
	}
	if flags.Changed("warehouse-driver") {
		cfg.Warehouse.Driver = warehouseDriver
	}
	if flags.Changed("warehouse-dsn") {
		cfg.Warehouse.DSN = warehouseDSN
	}

	if err := setupLog(cfg.Logging, logLevelFlags); err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return cfg, nil
}

// setupLog initializes logging. Priority: CLI flags > LOG_LEVEL_* env vars > config file.
func setupLog(cfg config.LoggingConfig, flags []string) error {
	defaultLevel, packageLevels, err := parseLogLevelFlags(cfg, flags)
	if err != nil {
		return err
	}
	return logging.Initialize(defaultLevel, packageLevels)
}

// parseLogLevelFlags merges config levels, LOG_LEVEL_<PKG> env vars and
// --log-level flags into a default level and per-package levels.
// CLI format: ["debug"], ["default=info", "diagnosis.runner=debug"].
// Env format: LOG_LEVEL_DIAGNOSIS_RUNNER=debug.
func parseLogLevelFlags(cfg config.LoggingConfig, flags []string) (string, map[string]string, error) {
	result := make(map[string]string)
	if cfg.Level != "" {
		result["default"] = cfg.Level
	}
	for pkg, level := range cfg.Levels {
		result[pkg] = level
	}

	for _, envPair := range os.Environ() {
		if !strings.HasPrefix(envPair, "LOG_LEVEL_") {
			continue
		}
		parts := strings.SplitN(envPair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		result[convertEnvKeyToPackageName(parts[0])] = parts[1]
	}

	for _, flag := range flags {
		if !strings.Contains(flag, "=") {
			result["default"] = flag
			continue
		}
		parts := strings.SplitN(flag, "=", 2)
		result[parts[0]] = parts[1]
	}

	defaultLevel := "info"
	if level, ok := result["default"]; ok {
		defaultLevel = level
		delete(result, "default")
	}
	if _, err := logging.ParseLevel(defaultLevel); err != nil {
		return "", nil, err
	}
	for pkg, level := range result {
		if _, err := logging.ParseLevel(level); err != nil {
			return "", nil, fmt.Errorf("invalid log level for package %q: %w", pkg, err)
		}
	}
	return defaultLevel, result, nil
}

// convertEnvKeyToPackageName converts LOG_LEVEL_GRAPH_SYNC to graph.sync
func convertEnvKeyToPackageName(envKey string) string {
	name := strings.TrimPrefix(envKey, "LOG_LEVEL_")
	return strings.ToLower(strings.ReplaceAll(name, "_", "."))
}
