package domain

// Role represents a staff user role in the system
type Role string

const (
	// RoleAdmin is a platform-level operator with no merchant scope.
	// Admins may quote across merchants but cannot originate loans.
	RoleAdmin Role = "ADMIN"
	// RoleMerchant is a merchant staff member scoped to one merchant.
	RoleMerchant Role = "MERCHANT"
)
