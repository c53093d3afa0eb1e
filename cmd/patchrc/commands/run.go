package commands

import (
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/runner"
	"gitlab.com/tozd/go/errors"
)

// OptsFactory builds the shared options after flags are parsed.
type OptsFactory func(cmd *cobra.Command) (*opts.RootOpts, error)

// NewRunCmd creates a new run command
func NewRunCmd(factory OptsFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Apply the configured patches to their target files",
		Long: `Run loads the configuration, compiles every patch rule, and applies
each patch set to its target file in declaration order. Files are written back
atomically and only when their content actually changed. Rules whose target is
absent or already patched are skipped, so re-running is always safe.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "run").Logger().WithContext(ctx)

			o, err := factory(cmd)
			if err != nil {
				return err
			}

			// Compile rules first: a malformed rule aborts before
			// any file is touched.
			bindings, err := o.Config.Compile(ctx)
			if err != nil {
				return errors.Errorf("compiling patches: %w", err)
			}

			r := runner.NewRunner(runner.Options{
				Root:     o.Root,
				Parallel: o.Parallel,
			})
			report, err := r.Run(ctx, bindings)
			if err != nil {
				return errors.Errorf("running patches: %w", err)
			}

			o.Reporter.ReportRun(report)

			if !report.OK() {
				return errors.Errorf("%d file(s) failed", report.Failed())
			}
			pterm.Success.Printfln("patched %d of %d file(s)", report.Changed(), len(report.Results))
			return nil
		},
	}

	return cmd
}
