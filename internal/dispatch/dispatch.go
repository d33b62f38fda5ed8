// Package dispatch runs nesting jobs in a background goroutine and
// reports their lifecycle over a channel. The interactive front-end (or
// the HTTP server) starts a job, consumes events, and may cancel at any
// time; the engine observes cancellation at its suspension points.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/piwi3910/NestCut/internal/engine"
	"github.com/piwi3910/NestCut/internal/model"
)

// EventKind discriminates job lifecycle events.
type EventKind string

const (
	// EventProgress carries an advisory progress report.
	EventProgress EventKind = "progress"
	// EventComplete carries the final ranked results.
	EventComplete EventKind = "complete"
	// EventError reports a failed job.
	EventError EventKind = "error"
	// EventCancelled reports a job ended by Cancel.
	EventCancelled EventKind = "cancelled"
)

// Event is one job lifecycle notification.
type Event struct {
	Kind     EventKind          `json:"kind"`
	Percent  float64            `json:"percent,omitempty"`
	Message  string             `json:"message,omitempty"`
	Results  []model.NestResult `json:"results,omitempty"`
	ErrorMsg string             `json:"error,omitempty"`
}

// Job is a running nesting computation.
type Job struct {
	events chan Event
	cancel context.CancelFunc
}

// Events returns the job's event stream. The channel is closed after the
// terminal event (complete, error or cancelled).
func (j *Job) Events() <-chan Event {
	return j.events
}

// Cancel signals the job to stop. The engine observes the signal at its
// next suspension point; the terminal event is EventCancelled and partial
// results are discarded.
func (j *Job) Cancel() {
	j.cancel()
}

// Start launches a nesting job for one design over the candidate sheets.
// Progress events may be coalesced by slow consumers: the progress channel
// slot is best-effort while terminal events always arrive.
func Start(design model.Design, sheets []model.SheetPreset, settings model.NestSettings) *Job {
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{
		events: make(chan Event, 16),
		cancel: cancel,
	}

	driver := engine.NewDriver(settings)
	driver.Progress = func(percent float64, message string) {
		// Drop progress reports the consumer has not drained; they are
		// advisory.
		select {
		case job.events <- Event{Kind: EventProgress, Percent: percent, Message: message}:
		default:
		}
	}

	go func() {
		defer close(job.events)
		results, err := driver.Nest(ctx, design, sheets)
		switch {
		case errors.Is(err, engine.ErrCancelled):
			job.events <- Event{Kind: EventCancelled, Message: "cancelled"}
		case err != nil:
			job.events <- Event{Kind: EventError, ErrorMsg: fmt.Sprintf("nesting failed: %v", err)}
		default:
			job.events <- Event{Kind: EventComplete, Percent: 100, Results: results}
		}
	}()

	return job
}
