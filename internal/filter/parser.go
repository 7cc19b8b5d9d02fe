package filter

import (
	"regexp"
	"strconv"
	"strings"

	"sjsage522/listingwatch/pkg/errors"
)

// Parse parses a filter expression. An empty expression yields an empty
// Expression and no error.
func Parse(expression string) (Expression, error) {
	if strings.TrimSpace(expression) == "" {
		return Expression{}, nil
	}

	clauses := strings.Split(expression, ",")
	rules := make(Expression, 0, len(clauses))
	for i, clause := range clauses {
		rule, err := parseRule(strings.TrimSpace(clause), i)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// MustParse is like Parse but panics on malformed expressions
func MustParse(expression string) Expression {
	expr, err := Parse(expression)
	if err != nil {
		panic(err)
	}
	return expr
}

// parseRule splits a clause on the first operator found in priority order
func parseRule(clause string, position int) (Rule, error) {
	for _, op := range operators {
		left, right, found := strings.Cut(clause, op.token)
		if !found {
			continue
		}

		attribute := strings.ToLower(strings.TrimSpace(left))
		value := strings.TrimSpace(right)

		if value == "" {
			return Rule{}, errors.NewExpression(clause, position, "value can not be empty", nil)
		}
		if attribute == "" {
			return Rule{}, errors.NewExpression(clause, position, "attribute can not be empty", nil)
		}

		rule := Rule{Kind: op.kind, Attribute: attribute}
		switch op.kind {
		case Less, Greater:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Rule{}, errors.NewExpression(clause, position, "value must be an integer", nil)
			}
			rule.Number = n
		case Regex, RegexNot:
			pattern, err := regexp.Compile(value)
			if err != nil {
				return Rule{}, errors.NewExpression(clause, position, "invalid regular expression", err)
			}
			rule.Pattern = pattern
		}
		return rule, nil
	}

	return Rule{}, errors.NewExpression(clause, position, "unknown condition", nil)
}
