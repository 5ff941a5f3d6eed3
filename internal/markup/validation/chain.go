// Package validation runs pluggable rules over token trees.
package validation

import (
	"fmt"

	"github.com/goliatone/go-docmark/internal/markup"
	"github.com/goliatone/go-docmark/internal/markup/token"
)

// Rule inspects a token tree and reports structural violations. Rules must
// not mutate the tree. A rule accepts the tree when it reports no error
// severity diagnostic.
type Rule interface {
	Name() string
	Validate(tree *token.Tree) []markup.Diagnostic
}

// RuleFunc adapts a function into a Rule.
type RuleFunc func(tree *token.Tree) []markup.Diagnostic

type funcRule struct {
	name string
	fn   RuleFunc
}

// NewRule wraps fn as a named rule.
func NewRule(name string, fn RuleFunc) Rule {
	return funcRule{name: name, fn: fn}
}

func (r funcRule) Name() string { return r.name }

func (r funcRule) Validate(tree *token.Tree) []markup.Diagnostic {
	if r.fn == nil {
		return nil
	}
	return r.fn(tree)
}

type blockingRule struct {
	Rule
}

// Blocking marks rule as fatal: an error reported by it aborts compilation.
func Blocking(rule Rule) Rule {
	if rule == nil || IsBlocking(rule) {
		return rule
	}
	return blockingRule{Rule: rule}
}

// IsBlocking reports whether rule was registered through Blocking.
func IsBlocking(rule Rule) bool {
	_, ok := rule.(blockingRule)
	return ok
}

// Chain evaluates rules in registration order.
type Chain struct {
	rules []Rule
}

// Combine builds a chain over rules. Nil rules are skipped; an empty chain
// accepts every tree.
func Combine(rules ...Rule) *Chain {
	kept := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if rule != nil {
			kept = append(kept, rule)
		}
	}
	return &Chain{rules: kept}
}

// Len returns the number of rules in the chain.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rules)
}

// Rules returns a copy of the registered rules.
func (c *Chain) Rules() []Rule {
	if c == nil {
		return nil
	}
	return append([]Rule(nil), c.rules...)
}

// Report is the outcome of running a chain.
type Report struct {
	// Diagnostics are grouped by rule, in rule order.
	Diagnostics []markup.Diagnostic
	// Fatal is set when a blocking rule rejected the tree.
	Fatal bool
	// Rejected lists the names of the rules that rejected the tree.
	Rejected []string
}

// Valid reports whether every rule accepted the tree.
func (r Report) Valid() bool {
	return len(r.Rejected) == 0
}

// Errors returns the error severity diagnostics.
func (r Report) Errors() []markup.Diagnostic {
	var out []markup.Diagnostic
	for _, diag := range r.Diagnostics {
		if diag.Severity >= markup.SeverityError {
			out = append(out, diag)
		}
	}
	return out
}

// Validate runs every rule over tree.
func (c *Chain) Validate(tree *token.Tree) Report {
	var report Report
	if c == nil || tree == nil {
		return report
	}
	for _, rule := range c.rules {
		diags := append([]markup.Diagnostic(nil), run(rule, tree)...)
		rejected := false
		for i := range diags {
			if diags[i].Rule == "" {
				diags[i].Rule = rule.Name()
			}
			if diags[i].Path == "" {
				diags[i].Path = tree.Path()
			}
			if diags[i].Severity >= markup.SeverityError {
				rejected = true
			}
		}
		report.Diagnostics = append(report.Diagnostics, diags...)
		if rejected {
			report.Rejected = append(report.Rejected, rule.Name())
			if IsBlocking(rule) {
				report.Fatal = true
			}
		}
	}
	return report
}

func run(rule Rule, tree *token.Tree) (diags []markup.Diagnostic) {
	defer func() {
		if recovered := recover(); recovered != nil {
			diags = []markup.Diagnostic{{
				Code:     markup.CodeRulePanic,
				Severity: markup.SeverityError,
				Message:  fmt.Sprintf("rule %s panicked: %v", rule.Name(), recovered),
			}}
		}
	}()
	return rule.Validate(tree)
}
