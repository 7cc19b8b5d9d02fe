// Package filter parses condition strings such as "price<100,name~[Ss]ome"
// and evaluates them against listing records.
//
// An expression is a comma separated list of conditions and a record is
// kept only when it satisfies all of them. A condition is one of
//
//	ATTRIBUTE < INTEGER
//	ATTRIBUTE > INTEGER
//	ATTRIBUTE ~ REGULAR_EXPRESSION
//	ATTRIBUTE !~ REGULAR_EXPRESSION
//
// Regular expressions match anywhere inside the attribute value.
package filter

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind is the operator of a rule
type Kind int

const (
	Less Kind = iota
	Greater
	Regex
	RegexNot
)

// operators in parse priority order: "!~" must be tried before "~"
var operators = []struct {
	kind  Kind
	token string
}{
	{RegexNot, "!~"},
	{Regex, "~"},
	{Less, "<"},
	{Greater, ">"},
}

// Token returns the operator as written in expressions
func (k Kind) Token() string {
	for _, op := range operators {
		if op.kind == k {
			return op.token
		}
	}
	return "?"
}

// String returns the rule kind name used in error messages
func (k Kind) String() string {
	switch k {
	case Less:
		return "LESS"
	case Greater:
		return "GREATER"
	case Regex:
		return "REGEX"
	case RegexNot:
		return "REGEX_NOT"
	default:
		return "UNKNOWN"
	}
}

// Rule is one parsed condition. Number is set for Less and Greater, Pattern
// for Regex and RegexNot.
type Rule struct {
	Kind      Kind
	Attribute string
	Number    int
	Pattern   *regexp.Regexp
}

// String renders the rule in expression syntax
func (r Rule) String() string {
	value := strconv.Itoa(r.Number)
	if r.Pattern != nil {
		value = r.Pattern.String()
	}
	return r.Attribute + r.Kind.Token() + value
}

// Expression is an ordered list of rules combined with AND. An empty
// expression matches every record.
type Expression []Rule

// String renders the expression in canonical syntax
func (e Expression) String() string {
	parts := make([]string, len(e))
	for i, rule := range e {
		parts[i] = rule.String()
	}
	return strings.Join(parts, ",")
}
