// model/entity.go
package model

import (
	"fmt"
	"time"

	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
)

type EntityType string

const (
	EntityPrincipal EntityType = "principal"
	EntityResource  EntityType = "resource"
	EntityAny       EntityType = "any"
)

func (t EntityType) Valid() bool {
	return t == EntityPrincipal || t == EntityResource || t == EntityAny
}

// Entity is a registered subject or object with its stored attributes.
type Entity struct {
	URI          string      `json:"uri"`
	Type         EntityType  `json:"type"`
	Attributes   []Attribute `json:"attributes"`
	RegisteredAt time.Time   `json:"registered_at"`
}

// AttributeMap returns the entity attributes keyed by name.
func (e *Entity) AttributeMap() Attributes {
	out := make(Attributes, len(e.Attributes))
	for _, attr := range e.Attributes {
		out[attr.Key] = attr.Value
	}
	return out
}

// EntityCreate is the registration payload. URI is generated when empty.
type EntityCreate struct {
	URI        string     `json:"uri,omitempty"`
	Type       EntityType `json:"type"`
	Attributes Attributes `json:"attributes"`
}

func (e *EntityCreate) Validate() error {
	if e.Type == "" {
		e.Type = EntityAny
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%w: unknown entity type %q", themis_errors.ErrSchemaViolation, e.Type)
	}
	if len(e.Attributes) == 0 {
		return fmt.Errorf("%w: at least one attribute is required", themis_errors.ErrSchemaViolation)
	}
	for key := range e.Attributes {
		if key == "" {
			return fmt.Errorf("%w: empty attribute key", themis_errors.ErrSchemaViolation)
		}
	}
	return nil
}

// EntityUpdate replaces or merges attributes of an existing entity.
type EntityUpdate struct {
	URI        string     `json:"uri"`
	Type       EntityType `json:"type,omitempty"`
	Attributes Attributes `json:"attributes"`
}

// EntityPage is one page of a registry listing.
type EntityPage struct {
	Entities []Entity `json:"entities"`
	Total    int64    `json:"total"`
	Offset   int      `json:"offset"`
	Limit    int      `json:"limit"`
}
