package domain

type Role string

const (
	RoleUser    Role = "user"
	RoleTrainer Role = "trainer"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleTrainer, RoleAdmin:
		return true
	default:
		return false
	}
}

// DefaultRoles is assigned when a user is created without explicit roles.
func DefaultRoles() []Role {
	return []Role{RoleUser}
}

type User struct {
	ID           string `json:"id" bson:"_id"`
	Username     string `json:"username" bson:"username"`
	Email        string `json:"email" bson:"email"`
	PasswordHash string `json:"hashed_password" bson:"hashed_password"`
	Roles        []Role `json:"roles" bson:"roles"`
}

func (u User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Profile is the public shape of a user; the password hash never leaves the service.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Roles    []Role `json:"roles"`
}

func (u User) Profile() Profile {
	roles := make([]Role, len(u.Roles))
	copy(roles, u.Roles)
	return Profile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Roles:    roles,
	}
}
