package main

import (
	"github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/cobra"

	metadatacmd "github.com/goliatone/go-playbook-meta/internal/commands/metadata"
	"github.com/goliatone/go-playbook-meta/internal/report"
)

func (a *app) validateCommand() *cobra.Command {
	cfg := &a.cfg

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a written artifact and summarise its errors and warnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.ValidateMetadata(); err != nil {
				return fatal(err)
			}
			module, err := a.buildModule()
			if err != nil {
				return fatal(err)
			}

			var summary *report.Summary
			var runErr error
			set, err := metadatacmd.RegisterMetadataCommands(nil, module.Pipeline, module.Provider,
				metadatacmd.WithValidateObserver(metadatacmd.ValidateObserver{
					OnComplete: func(result *report.Summary, err error) {
						summary, runErr = result, err
					},
				}))
			if err != nil {
				return fatal(err)
			}
			unsubscribe := set.Subscribe()
			defer unsubscribe()

			err = dispatcher.Dispatch(cmd.Context(), metadatacmd.ValidateCommand{
				MetadataPath:  cfg.Validation.MetadataPath,
				LowConfidence: cfg.Validation.LowConfidence,
				MaxPerGroup:   cfg.Validation.MaxPerGroup,
			})
			if runErr == nil {
				runErr = err
			}
			if runErr != nil {
				return fatal(runErr)
			}

			report.RenderSummary(a.stdout, *summary)
			switch {
			case summary.DocumentsWithErrors > 0:
				return &exitError{code: exitFailure}
			case cfg.Validation.FailOnWarning && summary.HasWarnings():
				return &exitError{code: exitFailure}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Validation.MetadataPath, "metadata", cfg.Validation.MetadataPath, "Path of the JSON artifact to check")
	flags.BoolVar(&cfg.Validation.FailOnWarning, "fail-on-warning", cfg.Validation.FailOnWarning, "Exit 1 when any warning is present")
	flags.Float64Var(&cfg.Validation.LowConfidence, "low-confidence", cfg.Validation.LowConfidence, "List documents scoring below this confidence")
	flags.IntVar(&cfg.Validation.MaxPerGroup, "max-per-group", cfg.Validation.MaxPerGroup, "Messages shown per issue group (0 shows all)")
	return cmd
}
