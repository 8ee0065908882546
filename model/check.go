// model/check.go
package model

import (
	"fmt"

	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
)

const DefaultAction = "access"

// EntityRef names an entity by uri, by inline attributes, or both.
type EntityRef struct {
	URI        string     `json:"uri,omitempty"`
	Attributes Attributes `json:"attributes,omitempty"`
	Type       EntityType `json:"type"`
}

type CheckRequest struct {
	Principal EntityRef `json:"principal"`
	Resource  EntityRef `json:"resource"`
	Action    string    `json:"action"`
}

type CheckResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// Normalize applies defaults and rejects references that carry neither a
// uri nor attributes.
func (r *CheckRequest) Normalize() error {
	if r.Action == "" {
		r.Action = DefaultAction
	}
	if r.Principal.Type == "" {
		r.Principal.Type = EntityPrincipal
	}
	if r.Resource.Type == "" {
		r.Resource.Type = EntityResource
	}
	if err := r.Principal.validate("principal"); err != nil {
		return err
	}
	return r.Resource.validate("resource")
}

func (ref *EntityRef) validate(field string) error {
	if !ref.Type.Valid() {
		return fmt.Errorf("%w: %s: unknown entity type %q", themis_errors.ErrSchemaViolation, field, ref.Type)
	}
	if ref.URI == "" && len(ref.Attributes) == 0 {
		return fmt.Errorf("%w: %s: either uri or non-empty attributes must be provided", themis_errors.ErrSchemaViolation, field)
	}
	return nil
}

// Object renders the entity view conditions are evaluated against:
// {uri, type, attributes}.
func (ref *EntityRef) Object(resolved Attributes) Value {
	fields := map[string]Value{
		"type":       StringValue(string(ref.Type)),
		"attributes": resolved.Object(),
	}
	if ref.URI != "" {
		fields["uri"] = StringValue(ref.URI)
	} else {
		fields["uri"] = Null()
	}
	return ObjectValue(fields)
}
