package usecase

import "fmt"

// errorList keeps the first max messages and counts the rest.
type errorList struct {
	max     int
	items   []string
	dropped int
}

func newErrorList(limit int) *errorList {
	return &errorList{max: limit}
}

func (l *errorList) Add(msg string) {
	if len(l.items) < l.max {
		l.items = append(l.items, msg)
		return
	}
	l.dropped++
}

// List returns the retained messages plus a summary line when any were dropped.
func (l *errorList) List() []string {
	out := make([]string, 0, len(l.items)+1)
	out = append(out, l.items...)
	if l.dropped > 0 {
		out = append(out, fmt.Sprintf("... and %d more errors", l.dropped))
	}
	return out
}
