package rules

import "roofio/internal/domain"

// Registry holds rules in evaluation order, keyed by Rule.Key.
type Registry struct {
	rules []*Rule
	byKey map[string]int
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]int)}
}

// Register appends a rule. Registering an existing key replaces that rule in place,
// keeping its position in the evaluation order.
func (r *Registry) Register(rule *Rule) {
	if i, ok := r.byKey[rule.Key]; ok {
		r.rules[i] = rule
		return
	}
	r.byKey[rule.Key] = len(r.rules)
	r.rules = append(r.rules, rule)
}

// Get returns the rule for a key, or nil if not found.
func (r *Registry) Get(key string) *Rule {
	if i, ok := r.byKey[key]; ok {
		return r.rules[i]
	}
	return nil
}

// All returns every registered rule in evaluation order.
func (r *Registry) All() []*Rule {
	out := make([]*Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// ForType returns the rules that apply to docType, universal rules included.
func (r *Registry) ForType(docType domain.DocumentType) []*Rule {
	var out []*Rule
	for _, rule := range r.rules {
		if rule.Applies(docType) {
			out = append(out, rule)
		}
	}
	return out
}

// FieldsFor lists the field names the rules for docType can emit, in
// evaluation order and without duplicates.
func (r *Registry) FieldsFor(docType domain.DocumentType) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rule := range r.ForType(docType) {
		for _, f := range rule.Fields() {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// Default returns a registry loaded with the built-in construction rules.
func Default() *Registry {
	reg := NewRegistry()
	for _, rule := range builtinRules {
		reg.Register(rule)
	}
	return reg
}
