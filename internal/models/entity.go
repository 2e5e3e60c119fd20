package models

// Role identifies what kind of party an Entity is.
type Role string

const (
	RoleContributor Role = "CONTRIBUTOR"
	RoleCollective  Role = "COLLECTIVE"
	RoleHost        Role = "HOST"
	RolePlatform    Role = "PLATFORM"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleContributor, RoleCollective, RoleHost, RolePlatform:
		return true
	}
	return false
}

// Entity is an ownable ledger party.
type Entity struct {
	// ID is the unique identifier for the entity (UUID format).
	ID string

	// Name is the display name (e.g., "OSC", "ESLint").
	Name string

	// Role tells contributors, collectives, hosts and the platform apart.
	Role Role

	// Currency is the ISO 4217 code the entity keeps its balance in.
	// For hosts this is the settlement currency.
	Currency string

	// HostID is the fiscal host holding the entity's money.
	// Collectives point at their host, hosts and the platform at themselves,
	// contributors are unhosted and leave it empty.
	HostID string

	// HostFeePercent is the default fee a collective's host takes on
	// contributions, in [0,100]. Only meaningful for collectives.
	HostFeePercent float64

	// HostFeeSharePercent is the share of collected host fees owed onward to
	// the platform, set by the host's plan. Only meaningful for hosts.
	HostFeeSharePercent float64

	// CreatedAt is the Unix timestamp when the entity was created.
	CreatedAt int64
}

// IsHosted reports whether the entity's money is held by a host.
func (e *Entity) IsHosted() bool {
	return e.HostID != ""
}
