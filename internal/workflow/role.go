package workflow

import "github.com/shopspring/decimal"

// Role is the closed set of actors in the approval chain. Stored as strings
// on users and in JWT claims; never matched by substring.
type Role string

const (
	RoleApplicant         Role = "applicant"
	RoleJuniorEngineer    Role = "junior_engineer"
	RoleAssistantEngineer Role = "assistant_engineer"
	RoleExecutiveEngineer Role = "executive_engineer"
	RoleCityEngineer      Role = "city_engineer"
	RoleClerk             Role = "clerk"
	RoleAdmin             Role = "admin"
)

// OfficerRoles are the roles that act on pending applications.
var OfficerRoles = []Role{
	RoleJuniorEngineer,
	RoleAssistantEngineer,
	RoleExecutiveEngineer,
	RoleCityEngineer,
	RoleClerk,
}

// ValidRole reports whether r is a known role string.
func ValidRole(r Role) bool {
	switch r {
	case RoleApplicant, RoleJuniorEngineer, RoleAssistantEngineer,
		RoleExecutiveEngineer, RoleCityEngineer, RoleClerk, RoleAdmin:
		return true
	}
	return false
}

// Actor is the acting user as seen by the engine. Specialty is the position
// type an Assistant Engineer reviews; empty for every other role.
type Actor struct {
	UserID    string
	Role      Role
	Specialty string
}

// Position fee schedule. Architect carries no fee and bypasses the payment
// gate entirely.
var positionFees = map[string]decimal.Decimal{
	PositionArchitect:          decimal.Zero,
	PositionLicenceEngineer:    decimal.NewFromInt(1500),
	PositionStructuralEngineer: decimal.NewFromInt(1200),
	PositionSupervisorGrade1:   decimal.NewFromInt(800),
	PositionSupervisorGrade2:   decimal.NewFromInt(500),
}

// Position type constants mirrored from the model layer so the engine stays
// import-free of persistence concerns.
const (
	PositionArchitect          = "ARCHITECT"
	PositionLicenceEngineer    = "LICENCE_ENGINEER"
	PositionStructuralEngineer = "STRUCTURAL_ENGINEER"
	PositionSupervisorGrade1   = "SUPERVISOR_GRADE1"
	PositionSupervisorGrade2   = "SUPERVISOR_GRADE2"
)

// ValidPosition reports whether p is a known position type.
func ValidPosition(p string) bool {
	_, ok := positionFees[p]
	return ok
}

// FeeFor returns the license fee for a position type.
func FeeFor(position string) decimal.Decimal {
	if fee, ok := positionFees[position]; ok {
		return fee
	}
	return decimal.Zero
}

// FeeBearing reports whether the position requires payment before the Clerk
// stage is reachable.
func FeeBearing(position string) bool {
	return FeeFor(position).IsPositive()
}
