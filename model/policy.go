// model/policy.go
package model

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
)

const DefaultPolicyVersion = "1.0"

type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpStartsWith  Operator = "starts_with"
	OpEndsWith    Operator = "ends_with"
	OpGreater     Operator = "gt"
	OpGreaterEq   Operator = "gte"
	OpLess        Operator = "lt"
	OpLessEq      Operator = "lte"
	OpIn          Operator = "in"
	OpNotIn       Operator = "not_in"
)

// Operators lists every operator a condition may use.
var Operators = []Operator{
	OpEquals, OpNotEquals, OpContains, OpNotContains, OpStartsWith, OpEndsWith,
	OpGreater, OpGreaterEq, OpLess, OpLessEq, OpIn, OpNotIn,
}

func (o Operator) Valid() bool {
	for _, known := range Operators {
		if o == known {
			return true
		}
	}
	return false
}

type Condition struct {
	Path     string   `json:"path" validate:"attrpath"`
	Operator Operator `json:"operator" validate:"operator"`
	Value    Value    `json:"value"`
}

type Rule struct {
	Name                string      `json:"name" validate:"required"`
	Description         string      `json:"description,omitempty"`
	Effect              Effect      `json:"effect" validate:"oneof=allow deny"`
	PrincipalConditions []Condition `json:"principal_conditions" validate:"dive"`
	ResourceConditions  []Condition `json:"resource_conditions" validate:"dive"`
	Actions             []string    `json:"actions" validate:"min=1,dive,required"`
}

type Policy struct {
	Version       string `json:"version"`
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description,omitempty"`
	Rules         []Rule `json:"rules" validate:"dive"`
	DefaultEffect Effect `json:"default_effect" validate:"oneof=allow deny"`
}

var policyValidator = newPolicyValidator()

func newPolicyValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("attrpath", func(fl validator.FieldLevel) bool {
		return ValidPath(fl.Field().String())
	})
	_ = v.RegisterValidation("operator", func(fl validator.FieldLevel) bool {
		return Operator(fl.Field().String()).Valid()
	})
	return v
}

// ValidPath reports whether path is a non-empty dotted path whose segments
// are non-empty and contain no whitespace.
func ValidPath(path string) bool {
	if path == "" {
		return false
	}
	for _, segment := range strings.Split(path, ".") {
		if segment == "" || strings.IndexFunc(segment, unicode.IsSpace) >= 0 {
			return false
		}
	}
	return true
}

// Normalize fills defaults, slugifies the policy and rule names and checks
// the result. Failures wrap ErrSchemaViolation.
func (p *Policy) Normalize() error {
	if p.Version == "" {
		p.Version = DefaultPolicyVersion
	}
	if p.DefaultEffect == "" {
		p.DefaultEffect = EffectDeny
	}
	p.Name = Slugify(p.Name)

	seen := make(map[string]struct{}, len(p.Rules))
	for i := range p.Rules {
		rule := &p.Rules[i]
		rule.Name = Slugify(rule.Name)
		if rule.Name == "" {
			return fmt.Errorf("%w: rules[%d]: name is empty after slugify", themis_errors.ErrSchemaViolation, i)
		}
		if _, dup := seen[rule.Name]; dup {
			return fmt.Errorf("%w: rules[%d]: duplicate rule name %q", themis_errors.ErrSchemaViolation, i, rule.Name)
		}
		seen[rule.Name] = struct{}{}
		if rule.PrincipalConditions == nil {
			rule.PrincipalConditions = []Condition{}
		}
		if rule.ResourceConditions == nil {
			rule.ResourceConditions = []Condition{}
		}
	}
	if p.Rules == nil {
		p.Rules = []Rule{}
	}

	if err := policyValidator.Struct(p); err != nil {
		return fmt.Errorf("%w: %s", themis_errors.ErrSchemaViolation, describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// Rule returns the rule with the given slug.
func (p *Policy) Rule(name string) (*Rule, bool) {
	for i := range p.Rules {
		if p.Rules[i].Name == name {
			return &p.Rules[i], true
		}
	}
	return nil, false
}

// Clone copies the policy's rule and condition slices. Values are shared;
// they are never mutated after decoding.
func (p *Policy) Clone() *Policy {
	out := *p
	out.Rules = make([]Rule, len(p.Rules))
	for i, rule := range p.Rules {
		rule.PrincipalConditions = append([]Condition{}, rule.PrincipalConditions...)
		rule.ResourceConditions = append([]Condition{}, rule.ResourceConditions...)
		rule.Actions = append([]string{}, rule.Actions...)
		out.Rules[i] = rule
	}
	return &out
}
