package appcore

import (
	"fmt"
	"time"
)

type Stage uint8

const (
	StageProbe Stage = iota + 1
	StagePlan
	StageSnapshot
	StageRestyle
	StageSynthesize
	StageSegment
	StageMerge
	StagePublish
)

// Stages lists every stage in execution order.
var Stages = []Stage{
	StageProbe,
	StagePlan,
	StageSnapshot,
	StageRestyle,
	StageSynthesize,
	StageSegment,
	StageMerge,
	StagePublish,
}

func (s Stage) String() string {
	switch s {
	case StageProbe:
		return "probe"
	case StagePlan:
		return "plan"
	case StageSnapshot:
		return "snapshot"
	case StageRestyle:
		return "restyle"
	case StageSynthesize:
		return "synthesize"
	case StageSegment:
		return "segment"
	case StageMerge:
		return "merge"
	case StagePublish:
		return "publish"
	default:
		return "unknown"
	}
}

type OutcomeState uint8

const (
	OutcomePending OutcomeState = iota
	OutcomeSucceeded
	OutcomeSkipped
	OutcomeFailed
	OutcomeFatal
)

func (s OutcomeState) String() string {
	switch s {
	case OutcomePending:
		return "pending"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// IsTerminal is false only for OutcomePending.
func (s OutcomeState) IsTerminal() bool {
	return s == OutcomeSucceeded || s == OutcomeSkipped || s == OutcomeFailed || s == OutcomeFatal
}

// Outcome is what a stage reports back to the orchestrator. Item level
// failures inside a stage land in Warnings, the stage itself still succeeds.
type Outcome struct {
	Stage      Stage
	State      OutcomeState
	Reason     string
	Warnings   []string
	Err        error
	FinishedAt time.Time
}

func Succeeded(stage Stage, warnings ...string) Outcome {
	return Outcome{Stage: stage, State: OutcomeSucceeded, Warnings: warnings, FinishedAt: time.Now()}
}

func Skipped(stage Stage, reason string, warnings ...string) Outcome {
	return Outcome{Stage: stage, State: OutcomeSkipped, Reason: reason, Warnings: warnings, FinishedAt: time.Now()}
}

func Failed(stage Stage, err error, warnings ...string) Outcome {
	return Outcome{Stage: stage, State: OutcomeFailed, Reason: errReason(err), Err: err, Warnings: warnings, FinishedAt: time.Now()}
}

func Fatal(stage Stage, err error) Outcome {
	return Outcome{Stage: stage, State: OutcomeFatal, Reason: errReason(err), Err: err, FinishedAt: time.Now()}
}

func (o Outcome) String() string {
	if o.Reason == "" {
		return fmt.Sprintf("%s:%s", o.Stage, o.State)
	}
	return fmt.Sprintf("%s:%s (%s)", o.Stage, o.State, o.Reason)
}

func errReason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusAborted   RunStatus = "aborted"
	RunStatusFailed    RunStatus = "failed"
)

func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusAborted || s == RunStatusFailed
}

// Aggregate folds stage outcomes into a run status. A fatal outcome aborts,
// any failed outcome fails the run, a run whose stages all reached a terminal
// state (succeeded or skipped) is completed, anything else is still running.
func Aggregate(outcomes []Outcome) RunStatus {
	if len(outcomes) == 0 {
		return RunStatusPending
	}
	allTerminal := true
	failed := false
	for _, o := range outcomes {
		switch o.State {
		case OutcomeFatal:
			return RunStatusAborted
		case OutcomeFailed:
			failed = true
		case OutcomePending:
			allTerminal = false
		}
	}
	if failed {
		return RunStatusFailed
	}
	if allTerminal {
		return RunStatusCompleted
	}
	return RunStatusRunning
}
