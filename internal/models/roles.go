package models

const (
	RoleUser         = "user"
	RoleProfessional = "professional"
)

// ValidRole reports whether r is one of the roles a user row may carry.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleProfessional
}
