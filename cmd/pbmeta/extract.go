package main

import (
	"github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/cobra"

	metadatacmd "github.com/goliatone/go-playbook-meta/internal/commands/metadata"
	"github.com/goliatone/go-playbook-meta/internal/pipeline"
	"github.com/goliatone/go-playbook-meta/internal/report"
)

func (a *app) extractCommand() *cobra.Command {
	var verbose bool
	cfg := &a.cfg

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract metadata from every command document into a JSON artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.ValidateExtract(); err != nil {
				return fatal(err)
			}
			module, err := a.buildModule()
			if err != nil {
				return fatal(err)
			}

			printer := report.NewPrinter(a.stdout)
			var outcome *pipeline.Outcome
			var runErr error
			observer := metadatacmd.ExtractObserver{
				OnComplete: func(result *pipeline.Outcome, err error) {
					outcome, runErr = result, err
				},
			}
			if verbose {
				observer.OnFile = func(file pipeline.FileStatus) {
					printer.Status(file.Status, file.CommandID, file.Reason)
				}
			}

			set, err := metadatacmd.RegisterMetadataCommands(nil, module.Pipeline, module.Provider,
				metadatacmd.WithExtractObserver(observer))
			if err != nil {
				return fatal(err)
			}
			unsubscribe := set.Subscribe()
			defer unsubscribe()

			err = dispatcher.Dispatch(cmd.Context(), metadatacmd.ExtractCommand{
				InputDir:          cfg.Extract.InputDir,
				Output:            cfg.Extract.Output,
				Pattern:           cfg.Extract.Pattern,
				Recursive:         cfg.Extract.Recursive,
				Workers:           cfg.Extract.Workers,
				ReferencePrefix:   cfg.Extract.ReferencePrefix,
				IncludeSkillFiles: cfg.Extract.IncludeSkillFiles,
				Extensions:        cfg.Extract.Extensions,
				AllowedCategories: cfg.Validation.AllowedCategories,
				Timeout:           cfg.Extract.Timeout,
			})
			if runErr == nil {
				runErr = err
			}
			if runErr != nil {
				return fatal(runErr)
			}

			passed, warnings, failed := outcome.Totals()
			printer.Totals(passed, warnings, failed)
			if outcome.HasParseFailures() {
				return &exitError{code: exitFailure}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Extract.InputDir, "input-dir", cfg.Extract.InputDir, "Corpus root containing the command documents")
	flags.StringVar(&cfg.Extract.Output, "output", cfg.Extract.Output, "Path of the JSON artifact to write")
	flags.BoolVar(&verbose, "verbose", false, "Print one status line per document")
	flags.StringVar(&cfg.Extract.Pattern, "pattern", cfg.Extract.Pattern, "Glob applied to file names during discovery")
	flags.BoolVar(&cfg.Extract.Recursive, "recursive", cfg.Extract.Recursive, "Traverse category sub-directories")
	flags.IntVar(&cfg.Extract.Workers, "workers", cfg.Extract.Workers, "Parse workers (0 uses GOMAXPROCS)")
	flags.StringVar(&cfg.Extract.ReferencePrefix, "ref-prefix", cfg.Extract.ReferencePrefix, "Only treat /<id> tokens with this prefix as references")
	flags.BoolVar(&cfg.Extract.IncludeSkillFiles, "include-skill-files", cfg.Extract.IncludeSkillFiles, "Keep prompt-template files in the corpus")
	flags.StringSliceVar(&cfg.Validation.AllowedCategories, "categories", cfg.Validation.AllowedCategories, "Allowed categories; others are flagged with a warning")
	flags.DurationVar(&cfg.Extract.Timeout, "timeout", cfg.Extract.Timeout, "Abort the run after this long (0 disables)")
	return cmd
}
