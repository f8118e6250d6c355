package generator

import (
	"fmt"
	"strings"
)

// Problem is one invalid field in a study configuration.
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ConfigurationError reports a malformed study configuration. It is returned
// before any provider call is made.
type ConfigurationError struct {
	Problems []Problem
}

func (e *ConfigurationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if p.Field == "" {
			parts = append(parts, p.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", p.Field, p.Message))
	}
	return "invalid study configuration: " + strings.Join(parts, "; ")
}

func configError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Problems: []Problem{{Field: field, Message: fmt.Sprintf(format, args...)}}}
}
