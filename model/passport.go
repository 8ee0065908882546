// model/passport.go
package model

type PassportIssueRequest struct {
	URI        string     `json:"uri" binding:"required"`
	Attributes Attributes `json:"attributes,omitempty"`
	TTL        *int64     `json:"ttl,omitempty"`
}

type PassportIssueResponse struct {
	Passport   string `json:"passport"`
	PassportID string `json:"passport_id"`
	ExpiresIn  int64  `json:"expires_in"`
}
