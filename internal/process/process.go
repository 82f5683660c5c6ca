package process

import (
	"context"
	"errors"
	"fmt"

	kerrors "github.com/PolarWolf314/shroud/internal/errors"
)

// Handle identifies a launched program.
type Handle interface {
	Pid() int
}

// ExitStatus is how a program ended. Code is -1 when it was killed by a
// signal.
type ExitStatus struct {
	Code int
}

func (s ExitStatus) Success() bool { return s.Code == 0 }

// Runner launches programs and controls their lifetime.
type Runner interface {
	Launch(ctx context.Context, name string, args ...string) (Handle, error)
	Wait(h Handle) (ExitStatus, error)
	Terminate(h Handle) error
}

// ErrUnknownHandle is returned when a Runner is given a Handle it did not
// create.
var ErrUnknownHandle = errors.New("handle was not created by this runner")

// Supervise launches a program and waits for it. If ctx ends first the
// program is asked to terminate and Supervise still waits for it to exit,
// returning ctx's error alongside the final status.
func Supervise(ctx context.Context, r Runner, name string, args ...string) (ExitStatus, error) {
	h, err := r.Launch(ctx, name, args...)
	if err != nil {
		return ExitStatus{Code: -1}, err
	}

	type result struct {
		status ExitStatus
		err    error
	}
	done := make(chan result, 1)
	go func() {
		status, err := r.Wait(h)
		done <- result{status, err}
	}()

	select {
	case res := <-done:
		return res.status, res.err
	case <-ctx.Done():
		termErr := r.Terminate(h)
		res := <-done
		err := errors.Join(ctx.Err(), res.err)
		if termErr != nil {
			err = errors.Join(err, fmt.Errorf("%w: failed to terminate %s: %v", kerrors.ErrProcessFailed, name, termErr))
		}
		return res.status, err
	}
}
