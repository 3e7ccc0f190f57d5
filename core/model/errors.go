package model

import "fmt"

// DataError reports malformed source data. It aborts only the day it names,
// never the whole run.
type DataError struct {
	Day        string
	Provider   string
	Individual string
	Reason     string
}

func (e *DataError) Error() string {
	msg := fmt.Sprintf("data error on %s", e.Day)
	if e.Provider != "" {
		msg += fmt.Sprintf(", provider %q", e.Provider)
	}
	if e.Individual != "" {
		msg += fmt.Sprintf(", individual %q", e.Individual)
	}
	return msg + ": " + e.Reason
}

// ConfigurationError reports a provider catalog that cannot support the
// balancing rules at all. It is fatal for the whole run.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}
