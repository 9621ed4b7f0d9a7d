package main

import (
	"fmt"

	"github.com/pterm/pterm"
)

// spinner shows the progress of one long running step. Without a printer it
// stays silent.
type spinner struct {
	s    *pterm.SpinnerPrinter
	text string
}

func startSpinner(text string) (*spinner, error) {
	s, err := pterm.DefaultSpinner.
		WithRemoveWhenDone(false).
		WithText(text).
		Start()
	if err != nil {
		return nil, err
	}

	return &spinner{s: s, text: text}, nil
}

// progress returns a callback updating the spinner text.
func (sp *spinner) progress(unit string) func(done, total int64) {
	return func(done, total int64) {
		if sp.s == nil {
			return
		}

		if total <= 0 {
			sp.s.UpdateText(fmt.Sprintf("%s: %d %s", sp.text, done, unit))

			return
		}

		sp.s.UpdateText(fmt.Sprintf("%s: %d/%d %s (%.0f%%)", sp.text, done, total, unit, 100*float64(done)/float64(total)))
	}
}

// done stops the spinner reporting the outcome of err.
func (sp *spinner) done(err error, msg string) {
	if sp.s == nil {
		return
	}

	if err != nil {
		sp.s.Fail(sp.text + ": failed")

		return
	}

	sp.s.Success(msg)
}
