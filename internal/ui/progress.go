package ui

import (
	"github.com/schollz/progressbar/v3"
)

// Spinner wraps progressbar/v3 for operations whose length is unknown,
// which is every external tool invocation here: the solver gives no
// progress signal until it is done.
type Spinner struct {
	bar *progressbar.ProgressBar
}

// NewSpinner creates an indeterminate spinner with the given description
func NewSpinner(description string) *Spinner {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(10),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &Spinner{bar: bar}
}

// Describe changes the spinner description
func (s *Spinner) Describe(description string) {
	s.bar.Describe(description)
}

// Finish stops and clears the spinner
func (s *Spinner) Finish() error {
	if err := s.bar.Finish(); err != nil {
		return err
	}
	return s.bar.Clear()
}
