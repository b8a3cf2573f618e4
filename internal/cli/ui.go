package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// SpinnerRefreshRate defines the refresh frequency of the spinner.
const SpinnerRefreshRate = 100 * time.Millisecond

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// It defines the essential controls for a spinner: starting, stopping, and
// updating its status message.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner is a wrapper for the `spinner.Spinner` that implements the
// `Spinner` interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

// UpdateSuffix sets the text that is displayed after the spinner. The
// spinner library guards Suffix with its own lock only through Lock/Unlock.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], SpinnerRefreshRate, options...)
	return &realSpinner{s}
}

// nopSpinner is used in quiet mode.
type nopSpinner struct{}

func (nopSpinner) Start()              {}
func (nopSpinner) Stop()               {}
func (nopSpinner) UpdateSuffix(string) {}

// StartSpinner starts a spinner writing to w with the given message. When
// quiet is set it returns a spinner that draws nothing. The caller must
// call Stop.
func StartSpinner(w io.Writer, message string, quiet bool) Spinner {
	if quiet {
		return nopSpinner{}
	}
	s := newSpinner(spinner.WithWriter(w), spinner.WithHiddenCursor(true))
	s.UpdateSuffix(" " + message)
	s.Start()
	return s
}
