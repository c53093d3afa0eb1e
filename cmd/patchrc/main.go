package main

import (
	"context"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/commands"
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "patchrc",
		Short: "A tool for applying named, ordered text patches to source files",
		Long: `patchrc applies a configured set of textual transformation rules to
source files: literal substitutions, regex rewrites with capture groups, and
line-window edits. Every rule carries an idempotence guard so re-running the
same patch set against an already-patched tree is a safe no-op.`,
		SilenceUsage: true,
	}

	// Add shared flags
	addRootFlags(rootCmd)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogging(cmd)
	}

	// Add commands
	rootCmd.AddCommand(
		commands.NewRunCmd(newRootOpts),
		commands.NewCheckCmd(newRootOpts),
		commands.NewVersionCmd(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
