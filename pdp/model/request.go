package model

import (
	"github.com/dev-mohitbeniwal/themis/model"
)

// EvaluationRequest is a check request after attribute resolution. Principal
// and Resource are object values shaped {uri, type, attributes}.
type EvaluationRequest struct {
	Principal model.Value
	Resource  model.Value
	Action    string
}
