package store

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrJobNotFound       = errors.New("job not found")
)

// Job is a single entry in a user's job list. Title doubles as the lookup
// key for update/delete; nothing enforces title uniqueness.
type Job struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	EndDate     string `json:"endDate"`
}

// User represents a registered account. Password holds the bcrypt hash for
// accounts created through register; the legacy addUser path stores it verbatim.
type User struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Jobs     []Job  `json:"jobs"`
}

// UserStore defines the interface for user persistence. The store holds the
// full ordered record set; there is no per-user access path.
type UserStore interface {
	// Load returns all users in insertion order.
	Load() ([]User, error)
	// Save overwrites the full record set.
	Save(users []User) error
	// Update applies fn to the current record set and persists the result.
	// The whole load-transform-save cycle runs under a single critical
	// section, so concurrent updates cannot lose writes.
	Update(fn func(users []User) ([]User, error)) error
}
