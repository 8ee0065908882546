// audit/model.go
package audit

import (
	"time"
)

const (
	DefaultQueryLimit = 100
	MaxQueryLimit     = 1000
)

// DecisionLog is one entry of the decision audit trail.
type DecisionLog struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	PrincipalURI   string    `json:"principal_uri,omitempty"`
	ResourceURI    string    `json:"resource_uri,omitempty"`
	Action         string    `json:"action"`
	Allowed        bool      `json:"allowed"`
	Reason         string    `json:"reason"`
	DurationMicros int64     `json:"duration_us"`
	Bulk           bool      `json:"bulk"`
}

// Query filters the audit trail. Zero From/To leave that bound open and
// empty uris match everything.
type Query struct {
	From         time.Time
	To           time.Time
	PrincipalURI string
	ResourceURI  string
	Limit        int
}

// EffectiveLimit clamps Limit into (0, MaxQueryLimit].
func (q Query) EffectiveLimit() int {
	switch {
	case q.Limit <= 0:
		return DefaultQueryLimit
	case q.Limit > MaxQueryLimit:
		return MaxQueryLimit
	}
	return q.Limit
}

func (q Query) Matches(log DecisionLog) bool {
	if !q.From.IsZero() && log.Timestamp.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && log.Timestamp.After(q.To) {
		return false
	}
	if q.PrincipalURI != "" && log.PrincipalURI != q.PrincipalURI {
		return false
	}
	if q.ResourceURI != "" && log.ResourceURI != q.ResourceURI {
		return false
	}
	return true
}
