package models

import (
	"strings"
)

// Profile is the public part of a user needed to label conversations
type Profile struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FullName joins first and last name, returning "" when both are blank
func (p *Profile) FullName() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}
