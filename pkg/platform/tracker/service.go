package tracker

import (
	"errors"

	"github.com/jobdesk/jobdesk/pkg/platform/auth"
	"github.com/jobdesk/jobdesk/pkg/platform/store"
	"go.uber.org/zap"
)

// AuthPayload is the response envelope for register, login and the
// token-scoped job mutations. Exactly one of Message or Error is set;
// Token is only present on a successful login.
type AuthPayload struct {
	User    *store.User `json:"user"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Token   string      `json:"token,omitempty"`
}

// UserInput carries the fields for addUser and register.
type UserInput struct {
	Name     string
	Surname  string
	Username string
	Email    string
	Password string
}

// Service implements the job-tracking operations on top of the user store.
// Reads go through Load; every mutation runs inside store.Update so that
// concurrent requests cannot overwrite each other's writes.
type Service struct {
	store  store.UserStore
	auth   *auth.AuthEngine
	logger *zap.Logger
}

func NewService(st store.UserStore, authEngine *auth.AuthEngine, logger *zap.Logger) *Service {
	return &Service{
		store:  st,
		auth:   authEngine,
		logger: logger,
	}
}

// ListUsers returns every user in insertion order.
func (s *Service) ListUsers() ([]store.User, error) {
	return s.store.Load()
}

// GetUser returns the user with the given username, or nil if absent.
func (s *Service) GetUser(username string) (*store.User, error) {
	users, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, nil
}

// AddUser appends a user without hashing the password or checking the
// email. Legacy operation kept for compatibility; register is the real
// sign-up path. Fails hard on a duplicate username.
func (s *Service) AddUser(input UserInput) (*store.User, error) {
	var created *store.User
	err := s.store.Update(func(users []store.User) ([]store.User, error) {
		for i := range users {
			if users[i].Username == input.Username {
				return nil, store.ErrUserAlreadyExists
			}
		}
		users = append(users, store.User{
			Name:     input.Name,
			Surname:  input.Surname,
			Username: input.Username,
			Email:    input.Email,
			Password: input.Password,
			Jobs:     []store.Job{},
		})
		created = &users[len(users)-1]
		return users, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AddJob appends a job to the named user's list. Legacy operation: the
// caller supplies the username, no token required. Fails hard when the
// user does not exist. Not idempotent; duplicate calls append duplicate
// entries.
func (s *Service) AddJob(username string, job store.Job) (*store.User, error) {
	var updated *store.User
	err := s.store.Update(func(users []store.User) ([]store.User, error) {
		for i := range users {
			if users[i].Username == username {
				users[i].Jobs = append(users[i].Jobs, job)
				updated = &users[i]
				return users, nil
			}
		}
		return nil, store.ErrUserNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Register creates an account with a hashed password. Duplicates (by
// username or email) come back as a soft error in the envelope, not a
// failed call.
func (s *Service) Register(input UserInput) (*AuthPayload, error) {
	hashed, err := s.auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	var created *store.User
	err = s.store.Update(func(users []store.User) ([]store.User, error) {
		for i := range users {
			if users[i].Username == input.Username || users[i].Email == input.Email {
				return nil, store.ErrUserAlreadyExists
			}
		}
		users = append(users, store.User{
			Name:     input.Name,
			Surname:  input.Surname,
			Username: input.Username,
			Email:    input.Email,
			Password: hashed,
			Jobs:     []store.Job{},
		})
		created = &users[len(users)-1]
		return users, nil
	})
	if errors.Is(err, store.ErrUserAlreadyExists) {
		return &AuthPayload{Error: "User already exists"}, nil
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("username", input.Username))
	return &AuthPayload{User: created, Message: "Registration successful"}, nil
}

// Login verifies credentials and issues a session token. The identifier
// may be a username or an email address.
func (s *Service) Login(identifier, password string) (*AuthPayload, error) {
	users, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	var user *store.User
	for i := range users {
		if users[i].Username == identifier || users[i].Email == identifier {
			user = &users[i]
			break
		}
	}
	if user == nil {
		return &AuthPayload{Error: "User not found"}, nil
	}

	if !s.auth.CheckPassword(password, user.Password) {
		return &AuthPayload{Error: "Invalid password"}, nil
	}

	token, err := s.auth.IssueToken(user.Username, user.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("username", user.Username))
	return &AuthPayload{User: user, Message: "Login successful", Token: token}, nil
}

// CreateJob appends a job to the authenticated user's list.
func (s *Service) CreateJob(identity *auth.Claims, job store.Job) (*AuthPayload, error) {
	if identity == nil {
		return &AuthPayload{Error: "Unauthorized"}, nil
	}

	var updated *store.User
	err := s.store.Update(func(users []store.User) ([]store.User, error) {
		for i := range users {
			if users[i].Username == identity.Username {
				users[i].Jobs = append(users[i].Jobs, job)
				updated = &users[i]
				return users, nil
			}
		}
		return nil, store.ErrUserNotFound
	})
	if errors.Is(err, store.ErrUserNotFound) {
		return &AuthPayload{Error: "User not found"}, nil
	}
	if err != nil {
		return nil, err
	}

	return &AuthPayload{User: updated, Message: "Job added successfully"}, nil
}

// UpdateJob replaces the first job whose title matches. With duplicate
// titles the first entry wins.
func (s *Service) UpdateJob(identity *auth.Claims, title string, job store.Job) (*AuthPayload, error) {
	if identity == nil {
		return &AuthPayload{Error: "Unauthorized"}, nil
	}

	var updated *store.User
	err := s.store.Update(func(users []store.User) ([]store.User, error) {
		for i := range users {
			if users[i].Username != identity.Username {
				continue
			}
			for j := range users[i].Jobs {
				if users[i].Jobs[j].Title == title {
					users[i].Jobs[j] = job
					updated = &users[i]
					return users, nil
				}
			}
			return nil, store.ErrJobNotFound
		}
		return nil, store.ErrUserNotFound
	})
	if errors.Is(err, store.ErrUserNotFound) {
		return &AuthPayload{Error: "User not found"}, nil
	}
	if errors.Is(err, store.ErrJobNotFound) {
		return &AuthPayload{Error: "Job not found"}, nil
	}
	if err != nil {
		return nil, err
	}

	return &AuthPayload{User: updated, Message: "Job updated successfully"}, nil
}

// DeleteJob removes the first job whose title matches.
func (s *Service) DeleteJob(identity *auth.Claims, title string) (*AuthPayload, error) {
	if identity == nil {
		return &AuthPayload{Error: "Unauthorized"}, nil
	}

	var updated *store.User
	err := s.store.Update(func(users []store.User) ([]store.User, error) {
		for i := range users {
			if users[i].Username != identity.Username {
				continue
			}
			for j := range users[i].Jobs {
				if users[i].Jobs[j].Title == title {
					users[i].Jobs = append(users[i].Jobs[:j], users[i].Jobs[j+1:]...)
					updated = &users[i]
					return users, nil
				}
			}
			return nil, store.ErrJobNotFound
		}
		return nil, store.ErrUserNotFound
	})
	if errors.Is(err, store.ErrUserNotFound) {
		return &AuthPayload{Error: "User not found"}, nil
	}
	if errors.Is(err, store.ErrJobNotFound) {
		return &AuthPayload{Error: "Job not found"}, nil
	}
	if err != nil {
		return nil, err
	}

	return &AuthPayload{User: updated, Message: "Job deleted successfully"}, nil
}
