package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents HTML parsing and normalization errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeReport represents report delivery errors (mail, feed)
	ErrorTypeReport ErrorType = "report"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents an error raised while scraping or reporting a source
type ScrapeError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether a later attempt could succeed. Nothing retries
// right away, the next crawl tick is the retry.
func (e *ScrapeError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork:
		return true
	default:
		return false
	}
}

// New creates a new ScrapeError
func New(errType ErrorType, source, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(source, message string, err error) *ScrapeError {
	return New(ErrorTypeNetwork, source, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source string, duration time.Duration) *ScrapeError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, source, message, nil)
}

// NewCache creates a new cache error
func NewCache(source, message string, err error) *ScrapeError {
	return New(ErrorTypeCache, source, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(source, message string, err error) *ScrapeError {
	return New(ErrorTypePublisher, source, message, err)
}

// NewReport creates a new report delivery error
func NewReport(source, message string, err error) *ScrapeError {
	return New(ErrorTypeReport, source, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// ExpressionError is returned when a filter expression cannot be parsed.
// Position is the zero-based index of the offending clause.
type ExpressionError struct {
	Clause   string
	Position int
	Message  string
	Err      error
}

// Error implements the error interface
func (e *ExpressionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (condition %d %q): %v", e.Message, e.Position+1, e.Clause, e.Err)
	}
	return fmt.Sprintf("%s (condition %d %q)", e.Message, e.Position+1, e.Clause)
}

// Unwrap returns the underlying error
func (e *ExpressionError) Unwrap() error {
	return e.Err
}

// NewExpression creates a new ExpressionError
func NewExpression(clause string, position int, message string, err error) *ExpressionError {
	return &ExpressionError{
		Clause:   clause,
		Position: position,
		Message:  message,
		Err:      err,
	}
}

// EvaluationError is returned when an ordering condition meets an attribute
// whose value is not an integer.
type EvaluationError struct {
	Attribute string
	Kind      string
	Value     string
}

// Error implements the error interface
func (e *EvaluationError) Error() string {
	return fmt.Sprintf("value %q for attribute %q is not an integer and can not be used with a condition of type %s",
		e.Value, e.Attribute, e.Kind)
}

// NewEvaluation creates a new EvaluationError
func NewEvaluation(attribute, kind, value string) *EvaluationError {
	return &EvaluationError{
		Attribute: attribute,
		Kind:      kind,
		Value:     value,
	}
}

// IsExpression reports whether err wraps an ExpressionError
func IsExpression(err error) bool {
	var target *ExpressionError
	return stderrors.As(err, &target)
}

// IsEvaluation reports whether err wraps an EvaluationError
func IsEvaluation(err error) bool {
	var target *EvaluationError
	return stderrors.As(err, &target)
}

// IsType reports whether err wraps a ScrapeError of the given type
func IsType(err error, errType ErrorType) bool {
	var target *ScrapeError
	if stderrors.As(err, &target) {
		return target.Type == errType
	}
	return false
}

// IsRetryable reports whether err wraps a ScrapeError a later attempt could clear
func IsRetryable(err error) bool {
	var target *ScrapeError
	return stderrors.As(err, &target) && target.IsRetryable()
}
