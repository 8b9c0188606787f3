package dnsauth

import (
	"time"

	"github.com/google/uuid"
)

// Trace is a correlation id (a uuid plus a start time) for one
// evaluation run. PopulateStatus neither creates nor logs one.
type Trace struct {
	Id    uuid.UUID
	Start time.Time
}

func NewTrace() *Trace {
	return newTraceWithStart(time.Now())
}

func newTraceWithStart(start time.Time) *Trace {
	id, _ := uuid.NewV7()
	return &Trace{Id: id, Start: start}
}

func (t *Trace) ID() string {
	return t.Id.String()
}

// ShortID returns only the last 7 characters, unique enough for log lines.
func (t *Trace) ShortID() string {
	return t.ID()[29:]
}

func (t *Trace) Elapsed() time.Duration {
	return time.Since(t.Start)
}
