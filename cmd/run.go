package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/PolarWolf314/shroud/internal/ui"
	"github.com/PolarWolf314/shroud/internal/workflows"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var runNoBanner bool

func init() {
	addPassphraseFlag(runCmd)
	runCmd.Flags().BoolVar(&runNoBanner, "no-banner", false, "do not print the banner before launching the program")
}

// resetRunCommandState resets the run command's global state for testing.
func resetRunCommandState() {
	runNoBanner = false
}

var runCmd = &cobra.Command{
	Use:   "run [-- program [args...]]",
	Short: "Unlock the profile, run the program and lock the profile again",
	Long: `Decrypts the profile, runs program with program_args and waits for it to
exit. The profile is then encrypted again, even if the program failed or
shroud was interrupted.

A different program can be given after --. Its exit code becomes shroud's.

Examples:
  shroud run
  shroud run -- firefox --profile Data/profile`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting run command")

	passphrase, err := resolvePassphrase(needsNewKey())
	if err != nil {
		fmt.Println(formatError("unlock", err))
		return failure(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := workflows.RunOptions{
		Environment: env,
		Passphrase:  passphrase,
	}
	if len(args) > 0 {
		opts.Program, opts.Args = args[0], args[1:]
	}

	if !runNoBanner {
		fmt.Println()
		figure.NewColorFigure("shroud", "alligator2", "green", true).Print()
		fmt.Println()
	}

	result, err := workflows.Run(ctx, opts)
	if result != nil && result.Unlock != nil && result.Unlock.Generated {
		fmt.Println(ui.Done("Created a new key pair at %s", ui.Path.Sprint(env.Config.KeyPath)))
	}
	if err != nil {
		fmt.Println(formatRunError(result, err))
		if errors.Is(err, context.Canceled) {
			return &ExitError{Code: 130}
		}
		return failure(err)
	}

	Logger.Infof("Run command completed with exit code %d", result.Exit.Code)
	fmt.Println(ui.Done("Profile locked again (%d files)", len(result.Lock.Report.Processed)))
	if !result.Exit.Success() {
		program := opts.Program
		if program == "" {
			program = env.Config.Program
		}
		fmt.Println(ui.Warning.Sprint("Warning: ") + fmt.Sprintf("%s exited with code %d", ui.Highlight.Sprint(program), result.Exit.Code))
		if result.Exit.Code > 0 {
			return &ExitError{Code: result.Exit.Code}
		}
		return reported
	}
	return nil
}

func formatRunError(result *workflows.RunResult, err error) string {
	if result == nil {
		return formatError("run", err)
	}

	switch {
	case result.Lock == nil:
		return formatError("unlock", err)

	case !result.Locked:
		return formatError("lock the profile after running", err) + "\n" +
			ui.Warning.Sprint("Warning: ") + "plain profile files may have been left in " + ui.Path.Sprint(env.Config.PlainDir) + "\n" +
			ui.Hint("Fix the problem and run %s", ui.Code.Sprint("shroud lock"))

	case errors.Is(err, context.Canceled):
		return ui.Failed("Interrupted") + "\n" +
			ui.Done("Profile locked again (%d files)", len(result.Lock.Report.Processed))

	default:
		return formatError("run", err)
	}
}
