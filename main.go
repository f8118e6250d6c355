package main

import (
	"errors"
	"fmt"
	"os"

	"focus_group_generator/generator"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0
	ExitError   = 1 // Provider or runtime failure
	ExitConfig  = 2 // Invalid study or settings
)

// settingsError marks a config file that could not be loaded or validated.
type settingsError struct {
	err error
}

func (e *settingsError) Error() string { return "config: " + e.err.Error() }
func (e *settingsError) Unwrap() error { return e.err }

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var cfgErr *generator.ConfigurationError
	var setErr *settingsError
	if errors.As(err, &cfgErr) || errors.As(err, &setErr) {
		return ExitConfig
	}
	return ExitError
}
