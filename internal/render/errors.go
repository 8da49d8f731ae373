// Package render holds error types shared by the dialect packages.
package render

import "fmt"

// UnsupportedFeatureError reports a statement construct the dialect cannot
// compile, such as an upsert conflict clause on SQL Server.
type UnsupportedFeatureError struct {
	Dialect string
	Feature string
	Hint    string
}

func (e UnsupportedFeatureError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s is not supported: %s", e.Dialect, e.Feature, e.Hint)
	}
	return fmt.Sprintf("%s: %s is not supported", e.Dialect, e.Feature)
}

// NewUnsupportedFeatureError creates an unsupported feature error. An empty
// hint is omitted from the message.
func NewUnsupportedFeatureError(dialect, feature, hint string) error {
	return UnsupportedFeatureError{Dialect: dialect, Feature: feature, Hint: hint}
}
