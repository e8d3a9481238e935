package cli

import (
	"fmt"

	"github.com/GriffinCanCode/AgentOS/harden/internal/harden"
	"github.com/dop251/goja"
	"github.com/spf13/cobra"
)

// InspectResult is what inspect prints.
type InspectResult struct {
	*harden.Report `yaml:",inline"`

	Names          []string `yaml:"names" json:"names"`
	RepairFailures []string `yaml:"repair_failures,omitempty" json:"repair_failures,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Harden a fresh realm and print the report",
		Long: `Build a fresh realm, collect its intrinsics, repair the dangerous
accessors and deep-freeze everything reachable. Prints the hardening
report: node counts, repaired properties and any repair failures.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.inspect()
			if res != nil {
				if werr := write(cmd.OutOrStdout(), a.opts.Output, res); werr != nil {
					return werr
				}
			}
			return err
		},
	}
	return cmd
}

func (a *app) inspect() (*InspectResult, error) {
	vm := goja.New()
	table, err := harden.Collect(vm)
	if err != nil {
		return nil, err
	}

	h, err := harden.New(vm,
		harden.WithLogger(a.logger.Hardener()),
		harden.WithRecorder(a.metrics),
		harden.WithExtraDangerous(a.config.Harden.ExtraDangerous...),
	)
	if err != nil {
		return nil, err
	}

	report, err := h.Harden(table)
	res := &InspectResult{
		Report:         report,
		Names:          table.Names(),
		RepairFailures: errorStrings(report.RepairFailures()),
	}
	if err != nil {
		return res, fmt.Errorf("hardening realm: %w", err)
	}
	return res, nil
}
