package auth

// Role is the coarse permission tier carried by users and tokens.
type Role string

const (
	RoleOrdinary Role = "ORDINARY"
	RoleInternal Role = "INTERNAL"
	RoleAdmin    Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOrdinary, RoleInternal, RoleAdmin:
		return true
	}
	return false
}
