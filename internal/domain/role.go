package domain

import "fmt"

// Role represents the functional category of a subtask.
// This is a value object that enforces valid role values; the router uses
// it to pick which provider answers a subtask.
type Role string

// Valid roles
const (
	RoleAnalysis  Role = "analysis"  // Market/feasibility analysis
	RoleCopy      Role = "copy"      // Marketing copy generation
	RoleSafety    Role = "safety"    // Risk and policy review
	RolePricing   Role = "pricing"   // Pricing recommendation
	RoleExecution Role = "execution" // Handled outside the engine
)

// NewRole creates a new Role value object with validation
func NewRole(value string) (Role, error) {
	r := Role(value)
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}

// Validate checks if the role is valid
func (r Role) Validate() error {
	switch r {
	case RoleAnalysis, RoleCopy, RoleSafety, RolePricing, RoleExecution:
		return nil
	default:
		return fmt.Errorf("invalid role %q: must be analysis, copy, safety, pricing, or execution", string(r))
	}
}

// String returns the string representation
func (r Role) String() string {
	return string(r)
}

// IsSafety reports whether this role is the risk-review role
func (r Role) IsSafety() bool {
	return r == RoleSafety
}
