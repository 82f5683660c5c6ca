package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	kerrors "github.com/PolarWolf314/shroud/internal/errors"
)

// ExecRunner runs programs as child processes. Nil streams inherit the
// parent's.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Dir is the working directory; empty means the current one.
	Dir string
}

type execHandle struct {
	cmd *exec.Cmd
}

func (h *execHandle) Pid() int { return h.cmd.Process.Pid }

func (r ExecRunner) Launch(ctx context.Context, name string, args ...string) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Not exec.CommandContext: the caller decides when to terminate.
	cmd := exec.Command(name, args...)
	cmd.Dir = r.Dir
	cmd.Env = os.Environ()
	cmd.Stdin = r.Stdin
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start %s: %v", kerrors.ErrProcessFailed, name, err)
	}
	return &execHandle{cmd: cmd}, nil
}

// Wait blocks until the program exits. A non-zero exit is reported in the
// status, not as an error.
func (r ExecRunner) Wait(h Handle) (ExitStatus, error) {
	eh, ok := h.(*execHandle)
	if !ok {
		return ExitStatus{Code: -1}, ErrUnknownHandle
	}

	err := eh.cmd.Wait()
	if err == nil {
		return ExitStatus{Code: 0}, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return ExitStatus{Code: exitErr.ExitCode()}, nil
	}
	return ExitStatus{Code: -1}, fmt.Errorf("%w: %v", kerrors.ErrProcessFailed, err)
}

// Terminate asks the program and any children it started to exit. A program
// that already exited is not an error.
func (r ExecRunner) Terminate(h Handle) error {
	eh, ok := h.(*execHandle)
	if !ok {
		return ErrUnknownHandle
	}
	if err := terminate(eh.cmd); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
