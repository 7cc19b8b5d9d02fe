package filter

import (
	"sjsage522/listingwatch/internal/listing"
	"sjsage522/listingwatch/pkg/errors"
)

// Match reports whether the record satisfies the rule. A record without the
// attribute never matches. Ordering rules on a non-integer value fail with an
// *errors.EvaluationError.
func Match(record listing.Record, rule Rule) (bool, error) {
	value, ok := record.Get(rule.Attribute)
	if !ok {
		return false, nil
	}

	switch rule.Kind {
	case Regex:
		return rule.Pattern.MatchString(value.String()), nil
	case RegexNot:
		return !rule.Pattern.MatchString(value.String()), nil
	case Less, Greater:
		n, ok := value.AsInt()
		if !ok {
			return false, errors.NewEvaluation(rule.Attribute, rule.Kind.String(), value.String())
		}
		if rule.Kind == Less {
			return n < rule.Number, nil
		}
		return n > rule.Number, nil
	default:
		return false, nil
	}
}

// MatchAll reports whether the record satisfies every rule, stopping at the
// first rule that fails
func MatchAll(record listing.Record, expr Expression) (bool, error) {
	for _, rule := range expr {
		matched, err := Match(record, rule)
		if err != nil || !matched {
			return false, err
		}
	}
	return true, nil
}

// Filter returns the records matching expr, in input order. The result is
// always a newly allocated slice, even when expr is empty.
func Filter(records []listing.Record, expr Expression) ([]listing.Record, error) {
	return (&Engine{}).Filter(records, expr)
}

// Apply parses expression and filters records with it
func Apply(records []listing.Record, expression string) ([]listing.Record, error) {
	expr, err := Parse(expression)
	if err != nil {
		return nil, err
	}
	return Filter(records, expr)
}

// Observer is notified of every record decision
type Observer interface {
	RecordDecision(source string, matched bool)
}

// Engine filters records and reports decisions to an optional observer
type Engine struct {
	Source   string
	Observer Observer
}

// NewEngine creates an engine for a named source
func NewEngine(source string, observer Observer) *Engine {
	return &Engine{Source: source, Observer: observer}
}

// Filter returns the records matching expr, in input order
func (e *Engine) Filter(records []listing.Record, expr Expression) ([]listing.Record, error) {
	result := make([]listing.Record, 0, len(records))
	for _, record := range records {
		matched, err := MatchAll(record, expr)
		if err != nil {
			return nil, err
		}
		if e.Observer != nil {
			e.Observer.RecordDecision(e.Source, matched)
		}
		if matched {
			result = append(result, record)
		}
	}
	return result, nil
}
