package commands

import (
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/pkg/runner"
	"gitlab.com/tozd/go/errors"
)

// NewCheckCmd creates a new check command
func NewCheckCmd(factory OptsFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report which files would change, without writing anything",
		Long: `Check runs the full patch pipeline in dry-run mode. It reports which
files would be rewritten and which rules would fire, but never modifies the
file system. It exits non-zero when any file still needs patching, which makes
it usable as a CI gate.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "check").Logger().WithContext(ctx)

			o, err := factory(cmd)
			if err != nil {
				return err
			}

			bindings, err := o.Config.Compile(ctx)
			if err != nil {
				return errors.Errorf("compiling patches: %w", err)
			}

			r := runner.NewRunner(runner.Options{
				Root:     o.Root,
				Parallel: o.Parallel,
				DryRun:   true,
			})
			report, err := r.Run(ctx, bindings)
			if err != nil {
				return errors.Errorf("checking patches: %w", err)
			}

			o.Reporter.ReportRun(report)

			if !report.OK() {
				return errors.Errorf("%d file(s) failed", report.Failed())
			}
			if n := report.Changed(); n > 0 {
				return errors.Errorf("%d file(s) need patching", n)
			}
			pterm.Success.Println("all files up to date")
			return nil
		},
	}

	return cmd
}
