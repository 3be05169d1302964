// Package error defines domain-specific errors for the MenuInzicht analytics backend.
package error

import (
	"errors"
	"fmt"
)

// Analytics domain errors.
var (
	// ErrInvalidDateFormat is returned when a date is not in YYYY-MM-DD format.
	ErrInvalidDateFormat = errors.New("invalid date format, expected YYYY-MM-DD")

	// ErrInvalidDateRange is returned when end is before start.
	ErrInvalidDateRange = errors.New("end date must not be before start date")

	// ErrInvalidMode is returned when the aggregation mode is unknown.
	ErrInvalidMode = errors.New("mode must be: day, week, month, year, weekday or interval")

	// ErrInvalidMetric is returned when the metric is unknown.
	ErrInvalidMetric = errors.New("metric must be: revenue, orders or avgOrderValue")

	// ErrInvalidStrategy is returned when no valid reduction strategy was selected.
	ErrInvalidStrategy = errors.New("reduction strategy must be: additive or meanOfOccurrences")

	// ErrInvalidPolicy is returned when no valid alignment policy was selected.
	ErrInvalidPolicy = errors.New("alignment policy must be: union or positional")

	// ErrInvalidCategory is returned when the catalog category is unknown.
	ErrInvalidCategory = errors.New("category must be: dish or drink")

	// ErrInvalidInterval is returned when the intraday interval size is not supported.
	ErrInvalidInterval = errors.New("interval must be one of 15, 30, 60, 90, 120, 180, 300 minutes")

	// ErrMissingPeriodA is returned when period A was not supplied.
	ErrMissingPeriodA = errors.New("period A is required")

	// ErrInvalidWeekday is returned when a weekday index is outside 0..6.
	ErrInvalidWeekday = errors.New("weekday must be between 0 (Monday) and 6 (Sunday)")

	// ErrInvalidTimeWindow is returned when a time-of-day window is malformed.
	ErrInvalidTimeWindow = errors.New("time window must be HH:MM-HH:MM with start not after end")

	// ErrInvalidChart is returned when the chart family is unknown or not served by the endpoint.
	ErrInvalidChart = errors.New("chart must be: aggregated or revenue")

	// ErrInvalidRankType is returned when the top items ranking is unknown.
	ErrInvalidRankType = errors.New("type must be: most or least")
)

// AnalyticsErrorCode defines error codes for analytics errors.
// Format: ANL-XXYYYY where XX is category and YYYY is specific error.
type AnalyticsErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidDateFormat AnalyticsErrorCode = "ANL-010001"
	ErrCodeInvalidDateRange  AnalyticsErrorCode = "ANL-010002"
	ErrCodeInvalidMode       AnalyticsErrorCode = "ANL-010003"
	ErrCodeInvalidMetric     AnalyticsErrorCode = "ANL-010004"
	ErrCodeInvalidStrategy   AnalyticsErrorCode = "ANL-010005"
	ErrCodeInvalidPolicy     AnalyticsErrorCode = "ANL-010006"
	ErrCodeInvalidCategory   AnalyticsErrorCode = "ANL-010007"
	ErrCodeInvalidInterval   AnalyticsErrorCode = "ANL-010008"
	ErrCodeMissingPeriodA    AnalyticsErrorCode = "ANL-010009"
	ErrCodeInvalidWeekday    AnalyticsErrorCode = "ANL-010010"
	ErrCodeInvalidTimeWindow AnalyticsErrorCode = "ANL-010011"
	ErrCodeInvalidChart      AnalyticsErrorCode = "ANL-010012"
	ErrCodeInvalidRankType   AnalyticsErrorCode = "ANL-010013"

	// Internal errors (99XXXX)
	ErrCodeAnalyticsInternalError AnalyticsErrorCode = "ANL-990001"
)

// AnalyticsError represents an analytics error with code and message.
type AnalyticsError struct {
	Code    AnalyticsErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AnalyticsError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AnalyticsError) Unwrap() error {
	return e.Err
}

// NewAnalyticsError creates a new AnalyticsError with the given code and message.
func NewAnalyticsError(code AnalyticsErrorCode, message string, err error) *AnalyticsError {
	return &AnalyticsError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ParseError is returned when a calendar date cannot be parsed.
// It is never recovered locally; callers surface it as an invalid range.
type ParseError struct {
	Input  string
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse date %q: %s", e.Input, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidDateFormat).
func (e *ParseError) Unwrap() error {
	return ErrInvalidDateFormat
}

// NewParseError creates a new ParseError.
func NewParseError(input, reason string) *ParseError {
	return &ParseError{Input: input, Reason: reason}
}
