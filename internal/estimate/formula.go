package estimate

import (
	"fmt"
	"strings"
)

// InterceptName is the parameter name of the implicit intercept term.
const InterceptName = "Intercept"

// Formula is a parsed model specification: one response, plus-separated
// regressor terms, implicit intercept.
type Formula struct {
	Response string
	Terms    []string
}

// ParseFormula parses a formula string of the form "y ~ treat + x".
// Terms are taken verbatim as column names; transformations and
// interactions are not supported.
func ParseFormula(s string) (*Formula, error) {
	parts := strings.Split(s, "~")
	if len(parts) != 2 {
		return nil, fmt.Errorf("formula %q must contain exactly one ~", s)
	}

	response := strings.TrimSpace(parts[0])
	if response == "" {
		return nil, fmt.Errorf("formula %q has an empty response", s)
	}

	rawTerms := strings.Split(parts[1], "+")
	terms := make([]string, 0, len(rawTerms))
	for _, term := range rawTerms {
		term = strings.TrimSpace(term)
		if term == "" {
			return nil, fmt.Errorf("formula %q has an empty term", s)
		}
		terms = append(terms, term)
	}

	return &Formula{Response: response, Terms: terms}, nil
}

// ParamNames returns the design-matrix parameter names, intercept
// first, in term order.
func (f *Formula) ParamNames() []string {
	names := make([]string, 0, len(f.Terms)+1)
	names = append(names, InterceptName)
	names = append(names, f.Terms...)
	return names
}
