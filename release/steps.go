// Package release drives a firmware OTA release: version bump, build,
// metadata, staging of the release files and the git bookkeeping.
package release

import (
	"context"
	"errors"
	"fmt"
)

// ErrAborted is returned when a step decides the release cannot continue.
var ErrAborted = errors.New("release aborted")

// Outcome tells Run what to do after a step.
type Outcome int

const (
	Proceed Outcome = iota
	Abort
	Retry
)

func (o Outcome) String() string {
	switch o {
	case Proceed:
		return "proceed"
	case Abort:
		return "abort"
	case Retry:
		return "retry"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Step is one named stage of a release.
type Step struct {
	Name string
	Run  func(ctx context.Context, st *State) (Outcome, error)
}

// State carries values between steps.
type State struct {
	CurrentVersion string
	Previous       *Metadata
	NewVersion     string
	ReleaseNotes   string
	HeaderUpdated  bool
	Built          bool
	Metadata       Metadata
	Staged         Staged
	Committed      bool
	Tagged         bool
	Pushed         bool
}

// Run executes steps in order. announce, if set, is called once per step
// with its 1-based position before the first attempt.
func Run(ctx context.Context, steps []Step, st *State, announce func(n int, s Step)) error {
	for i := 0; i < len(steps); i++ {
		s := steps[i]
		if announce != nil {
			announce(i+1, s)
		}
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcome, err := s.Run(ctx, st)
			if err != nil {
				return fmt.Errorf("%s: %w", s.Name, err)
			}
			if outcome == Retry {
				continue
			}
			if outcome == Abort {
				return fmt.Errorf("%w at %q", ErrAborted, s.Name)
			}
			break
		}
	}
	return nil
}
