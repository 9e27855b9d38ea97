package classify

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"
)

// Rule assigns Category to every URL for which Expr evaluates to true.
//
// Expr is a CEL expression over three string variables: url (as given),
// host (normalized, see Normalize) and path.  For example:
//
//	host.endsWith(".edu.br") || path.startsWith("/classroom")
type Rule struct {
	Category string
	Expr     string
}

type compiledRule struct {
	Rule
	program cel.Program
}

// Rules evaluates an ordered list of CEL rules.  The first rule that holds
// decides the category; if none holds, Classify returns ErrNoMatch.
type Rules struct {
	rules []compiledRule
}

// NewRules compiles rules.  Every expression must type-check as a bool.
func NewRules(rules []Rule) (*Rules, error) {
	env, err := cel.NewEnv(
		cel.Variable("url", cel.StringType),
		cel.Variable("host", cel.StringType),
		cel.Variable("path", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("creating CEL environment: %w", err)
	}

	r := &Rules{rules: make([]compiledRule, 0, len(rules))}
	for i, rule := range rules {
		if rule.Category == "" {
			return nil, fmt.Errorf("rule %d: empty category", i)
		}
		if rule.Expr == "" {
			return nil, fmt.Errorf("rule %d (%s): empty expression", i, rule.Category)
		}

		ast, issues := env.Compile(rule.Expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("rule %d (%s): compiling %q: %w", i, rule.Category, rule.Expr, issues.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, fmt.Errorf("rule %d (%s): %q is %v, want bool", i, rule.Category, rule.Expr, ast.OutputType())
		}
		p, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, rule.Category, err)
		}
		r.rules = append(r.rules, compiledRule{Rule: rule, program: p})
	}
	return r, nil
}

// Len returns the number of rules.
func (r *Rules) Len() int {
	return len(r.rules)
}

// Classify returns the category of the first matching rule.
func (r *Rules) Classify(ctx context.Context, rawURL string) (string, error) {
	host, path := parts(rawURL)
	vars := map[string]interface{}{
		"url":  rawURL,
		"host": host,
		"path": path,
	}

	for _, rule := range r.rules {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, _, err := rule.program.Eval(vars)
		if err != nil {
			return "", fmt.Errorf("evaluating rule %q: %w", rule.Expr, err)
		}
		if matched, ok := out.Value().(bool); ok && matched {
			return rule.Category, nil
		}
	}
	return "", ErrNoMatch
}
