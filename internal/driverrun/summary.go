package driverrun

import (
	"fmt"
	"strings"
	"time"
)

type timingItem struct {
	stepName string
	timeEnd  time.Time
}

// RunSummary captures metrics/timings of one analysis run over a translation
// unit. cmd/iwyu-go prints this summary as plain text to stderr after each
// run unless -log-verbosity is negative — the supplement spec.md's distillation dropped (spec
// item "per-run analysis summary"), retargeted from "how long did
// compilation take" to "how long did analysis take".
type RunSummary struct {
	startTime time.Time

	FilesAnalyzed   int
	UsesRecorded    int
	ViolationsFound int

	timings []timingItem
}

func NewRunSummary() *RunSummary {
	return &RunSummary{
		startTime: time.Now(),
		timings:   make([]timingItem, 0, 4),
	}
}

func (s *RunSummary) AddTiming(nameOfDoneStep string) {
	s.timings = append(s.timings, timingItem{nameOfDoneStep, time.Now()})
}

// ToLogString outputs RunSummary in a human-readable, easily parseable
// string suitable for appending to a log file across many runs.
func (s *RunSummary) ToLogString() string {
	duration := time.Since(s.startTime).Milliseconds()

	b := strings.Builder{}
	fmt.Fprintf(&b, "filesAnalyzed=%d, usesRecorded=%d, violationsFound=%d",
		s.FilesAnalyzed, s.UsesRecorded, s.ViolationsFound)

	prevTime := s.startTime
	fmt.Fprintf(&b, ", started=0ms")
	for _, item := range s.timings {
		dur := item.timeEnd.Sub(prevTime).Milliseconds()
		fmt.Fprintf(&b, ", %s=+%dms", item.stepName, dur)
		prevTime = item.timeEnd
	}
	fmt.Fprintf(&b, ", total=%dms", duration)

	return b.String()
}
