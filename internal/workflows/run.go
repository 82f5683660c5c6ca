package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/PolarWolf314/shroud/internal/audit"
	kerrors "github.com/PolarWolf314/shroud/internal/errors"
	"github.com/PolarWolf314/shroud/internal/process"
	"github.com/PolarWolf314/shroud/internal/profile"
)

// RunOptions configures the run workflow.
type RunOptions struct {
	Environment

	Passphrase *string

	// Runner defaults to process.ExecRunner.
	Runner process.Runner

	// Program and Args override program and program_args from the config.
	Program string
	Args    []string
}

// RunResult contains the outcome of a run.
type RunResult struct {
	Unlock *UnlockResult
	Lock   *LockResult
	Exit   process.ExitStatus

	// Locked is set once the profile was encrypted again without error.
	Locked bool
}

// Run unlocks the profile, runs the program until it exits and locks the
// profile again.
//
// The private key is wiped before the program starts. The profile is locked
// even when the program fails or ctx is cancelled. When unlocking fails after
// some files were already decrypted, only those files are locked again, so
// plain files left from an earlier session never overwrite their encrypted
// copies. A non-zero exit is reported in RunResult.Exit, not as an error.
func Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	program, args := opts.Config.Program, opts.Config.ProgramArgs
	if opts.Program != "" {
		program, args = opts.Program, opts.Args
	}
	if program == "" {
		return nil, fmt.Errorf("%w: no program configured", kerrors.ErrProcessFailed)
	}
	runner := opts.Runner
	if runner == nil {
		runner = process.ExecRunner{}
	}

	result := &RunResult{Exit: process.ExitStatus{Code: -1}}

	unlocked, keys, unlockErr := unlock(ctx, UnlockOptions{Environment: opts.Environment, Passphrase: opts.Passphrase})
	keys.Wipe()
	result.Unlock = unlocked
	if unlockErr != nil {
		if unlocked.Report == nil || len(unlocked.Report.Processed) == 0 {
			return result, unlockErr
		}
		lockErr := relock(ctx, opts, decrypted(unlocked), result)
		return result, errors.Join(unlockErr, lockErr)
	}

	opts.Logger.Infof("Launching %s", program)
	status, runErr := process.Supervise(ctx, runner, program, args...)
	result.Exit = status
	code := status.Code
	opts.record(audit.Entry{Operation: "run", Program: program, Exit: &code}, runErr)
	if runErr == nil {
		opts.Logger.Infof("%s terminated with exit code %d", program, status.Code)
	}

	lockErr := relock(ctx, opts, nil, result)
	return result, errors.Join(lockErr, runErr)
}

// decrypted returns the entries whose plain file the unlock wrote.
func decrypted(unlocked *UnlockResult) []profile.Entry {
	written := make(map[string]bool, len(unlocked.Report.Processed))
	for _, path := range unlocked.Report.Processed {
		written[path] = true
	}
	entries := []profile.Entry{}
	for _, e := range unlocked.Entries {
		if written[e.Plain] {
			entries = append(entries, e)
		}
	}
	return entries
}

// relock locks entries, or the whole layout when entries is nil, on a context
// that outlives ctx's cancellation.
func relock(ctx context.Context, opts RunOptions, entries []profile.Entry, result *RunResult) error {
	locked, err := Lock(context.WithoutCancel(ctx), LockOptions{Environment: opts.Environment, Entries: entries})
	result.Lock = locked
	result.Locked = err == nil
	return err
}
