package filter

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/bakkerme/prensa/internal/enrich"
	"github.com/bakkerme/prensa/internal/feed"
)

// Rule is an optional, user-configured predicate applied on top of the
// source/search filters. Expressions see the item's display fields:
//
//	title, summary, source, url, country
//
// With result "drop", matching items are hidden; with result "pass", only
// matching items are kept.
type Rule struct {
	name    string
	result  string
	program *vm.Program
}

func NewRule(name, expression, result string) (*Rule, error) {
	if name == "" || expression == "" {
		return nil, fmt.Errorf("rule name and expression are required")
	}
	if result != "pass" && result != "drop" {
		return nil, fmt.Errorf("rule result must be 'pass' or 'drop'")
	}
	program, err := expr.Compile(expression, expr.Env(map[string]interface{}{}))
	if err != nil {
		return nil, fmt.Errorf("compile filter rule %q: %w", name, err)
	}
	return &Rule{name: name, result: result, program: program}, nil
}

func (r *Rule) Name() string { return r.name }

// Filter evaluates the rule against each item. Items whose evaluation fails
// are kept; a rule must never make stories disappear because of its own bug.
func (r *Rule) Filter(items []feed.Item) []feed.Item {
	out := make([]feed.Item, 0, len(items))
	for _, it := range items {
		result, err := expr.Run(r.program, ruleEnv(it))
		if err != nil {
			out = append(out, it)
			continue
		}
		matched, ok := result.(bool)
		if !ok {
			out = append(out, it)
			continue
		}
		if r.result == "drop" && matched {
			continue
		}
		if r.result == "pass" && !matched {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Rules is an ordered set of rules applied one after another. A nil or empty
// set passes items through unchanged.
type Rules []*Rule

func (rs Rules) Filter(items []feed.Item) []feed.Item {
	for _, r := range rs {
		items = r.Filter(items)
	}
	return items
}

func ruleEnv(it feed.Item) map[string]interface{} {
	return map[string]interface{}{
		"title":   enrich.DisplayTitle(it),
		"summary": enrich.DisplaySummary(it),
		"source":  it.Source,
		"url":     it.URL,
		"country": enrich.CountryCode(enrich.SourceURL(it)),
	}
}
