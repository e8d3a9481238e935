package cli

import (
	"fmt"

	"github.com/GriffinCanCode/AgentOS/harden/internal/config"
	"github.com/GriffinCanCode/AgentOS/harden/internal/logging"
	"github.com/GriffinCanCode/AgentOS/harden/internal/monitoring"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Output   string // "yaml" | "json"
	LogLevel string
	Dev      bool
}

// ValidOutputs defines the allowed output formats.
var ValidOutputs = []string{"yaml", "json"}

// app is the state shared by subcommands once flags are parsed.
type app struct {
	opts    *RootOptions
	config  *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewRootCommand creates the root command for realmctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	a := &app{opts: opts}

	cmd := &cobra.Command{
		Use:   "realmctl",
		Short: "Harden JavaScript realms and run scripts inside them",
		Long: `realmctl builds goja realms whose built-in objects are repaired and
deep-frozen before any script runs.

Configuration comes from the environment (LOG_*, SANDBOX_*, HARDEN_*);
flags override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidOutput(opts.Output) {
				return fmt.Errorf("invalid output %q: must be one of %v", opts.Output, ValidOutputs)
			}
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", "yaml", "output format (yaml|json)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&opts.Dev, "dev", false, "development logging")

	cmd.AddCommand(NewInspectCommand(a))
	cmd.AddCommand(NewRunCommand(a))

	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.opts.LogLevel
	}
	if flags.Changed("dev") {
		cfg.Logging.Development = a.opts.Dev
	}

	logger, err := logging.New(logging.FromConfig(cfg.Logging))
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	a.config = cfg
	a.logger = logger
	a.metrics = monitoring.NewMetrics(prometheus.NewRegistry())
	return nil
}

// isValidOutput checks if the output format is one of the allowed values.
func isValidOutput(output string) bool {
	for _, o := range ValidOutputs {
		if o == output {
			return true
		}
	}
	return false
}
