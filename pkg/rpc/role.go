package rpc

// Role is the caller's privilege level, assigned by the transport layer
// before a request reaches the gate.
type Role int

const (
	// RoleForbidden is the sentinel returned for commands that do not
	// resolve; no caller ever holds it.
	RoleForbidden Role = iota
	RoleUser
	RoleIdentified
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleIdentified:
		return "identified"
	case RoleAdmin:
		return "admin"
	default:
		return "forbidden"
	}
}

// IsUnlimited reports whether the role is exempt from load shedding.
func (r Role) IsUnlimited() bool { return r == RoleAdmin }

// RoleRequired returns the minimum role needed to run the named command, or
// RoleForbidden when the command does not resolve. Pure lookup with no side
// effects; the transport layer uses it for authorization before a full
// request context exists.
func RoleRequired(reg Registry, command string) Role {
	handler, ok := reg.Lookup(command)
	if !ok {
		return RoleForbidden
	}
	return handler.RequiredRole()
}
