package core

import "context"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
)

// User is the public view of an account. The password hash never leaves the
// service.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	Active     bool   `json:"active"`
	LastLogin  string `json:"lastLogin,omitempty"`
	BusinessID string `json:"businessId"`
}

// storedUser is the persisted form under the users key.
type storedUser struct {
	User
	PasswordHash string `json:"passwordHash"`
}

type BusinessInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Country  string `json:"country"`
	Currency string `json:"currency"`
}

type NewUserInput struct {
	Username        string `json:"username"`
	Name            string `json:"name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            Role   `json:"role"`
}

type SignupResult struct {
	Business Business `json:"business"`
	User     User     `json:"user"`
}

// UserService owns the business registration and its user accounts.
type UserService interface {
	// Signup registers the business and its first admin. Allowed once.
	Signup(ctx context.Context, business BusinessInput, admin NewUserInput) (*SignupResult, error)

	// Authenticate checks credentials and stamps lastLogin.
	Authenticate(ctx context.Context, username, password string) (*User, error)

	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	AddUser(ctx context.Context, input NewUserInput) (*User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}
