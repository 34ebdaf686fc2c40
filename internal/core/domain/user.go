package domain

type Role string

const (
	RoleVisitor   Role = "visitor"
	RoleCurator   Role = "curator"
	RoleProfessor Role = "professor"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleVisitor, RoleCurator, RoleProfessor, RoleAdmin:
		return true
	}
	return false
}

// User is the read-only directory projection of an account.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
}

// Identity is the caller threaded explicitly into every eligibility,
// decision and intake call. It is built from the verified bearer token.
type Identity struct {
	ID   string
	Role Role
	Name string
}

// reviewAuthority maps a submission kind to the roles allowed to decide it.
var reviewAuthority = map[Kind][]Role{
	KindArtifact:           {RoleProfessor},
	KindCuratorApplication: {RoleProfessor},
}

// HasReviewAuthority reports whether role may decide submissions of kind.
func HasReviewAuthority(role Role, kind Kind) bool {
	for _, r := range reviewAuthority[kind] {
		if r == role {
			return true
		}
	}
	return false
}

// submitAuthority maps a submission kind to the roles allowed to create it.
var submitAuthority = map[Kind][]Role{
	KindArtifact:           {RoleCurator, RoleAdmin},
	KindCuratorApplication: {RoleVisitor},
}

// CanSubmit reports whether role may create submissions of kind.
func CanSubmit(role Role, kind Kind) bool {
	for _, r := range submitAuthority[kind] {
		if r == role {
			return true
		}
	}
	return false
}
