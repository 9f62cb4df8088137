package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"invoizo/internal/store"
	"invoizo/internal/timeutil"
)

const minPasswordLength = 8

type userService struct {
	store store.Store
	now   func() time.Time
}

// NewUserService constructs a UserService over the keyed store.
func NewUserService(s store.Store) UserService {
	return &userService{store: s, now: timeutil.Now}
}

func (s *userService) Signup(ctx context.Context, in BusinessInput, admin NewUserInput) (*SignupResult, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationf("Business name is required")
	}
	if err := checkNewUser(&admin, true); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var res SignupResult
	err = s.store.Update(ctx, func(tx store.Tx) error {
		var existing Business
		if err := store.Load(ctx, tx, store.KeyBusiness, &existing); err != nil {
			return err
		}
		if existing.ID != "" {
			return conflictf("A business is already registered. Please log in.")
		}

		currency := in.Currency
		if currency == "" {
			currency = "INR"
		}
		res.Business = Business{
			ID:               uuid.NewString(),
			Name:             strings.TrimSpace(in.Name),
			Email:            in.Email,
			Phone:            in.Phone,
			Address:          in.Address,
			Country:          in.Country,
			Currency:         currency,
			RegistrationDate: s.now().UTC().Format(time.RFC3339),
		}
		u := storedUser{
			User: User{
				ID:         uuid.NewString(),
				Username:   admin.Username,
				Name:       admin.Name,
				Role:       RoleAdmin,
				Active:     true,
				BusinessID: res.Business.ID,
			},
			PasswordHash: string(hash),
		}
		res.User = u.User

		if err := store.Save(ctx, tx, store.KeyBusiness, res.Business); err != nil {
			return err
		}
		return store.Save(ctx, tx, store.KeyUsers, []storedUser{u})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}
	return &res, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	var user User
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var business Business
		if err := store.Load(ctx, tx, store.KeyBusiness, &business); err != nil {
			return err
		}
		var users []storedUser
		if err := store.Load(ctx, tx, store.KeyUsers, &users); err != nil {
			return err
		}
		if business.ID == "" || len(users) == 0 {
			return notFoundf("No business registered. Please sign up first.")
		}

		i := indexOf(users, func(u storedUser) bool { return u.Username == username && u.Active })
		if i < 0 {
			return validationf("Invalid credentials")
		}
		if bcrypt.CompareHashAndPassword([]byte(users[i].PasswordHash), []byte(password)) != nil {
			return validationf("Invalid credentials")
		}
		users[i].LastLogin = s.now().UTC().Format(time.RFC3339)
		user = users[i].User
		return store.Save(ctx, tx, store.KeyUsers, users)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate %q: %w", username, err)
	}
	return &user, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*User, error) {
	var users []storedUser
	if err := store.Load(ctx, s.store, store.KeyUsers, &users); err != nil {
		return nil, err
	}
	i := indexOf(users, func(u storedUser) bool { return u.ID == id })
	if i < 0 {
		return nil, notFoundf("User not found")
	}
	u := users[i].User
	return &u, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]User, error) {
	var users []storedUser
	if err := store.Load(ctx, s.store, store.KeyUsers, &users); err != nil {
		return nil, err
	}
	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, u.User)
	}
	return out, nil
}

func (s *userService) AddUser(ctx context.Context, input NewUserInput) (*User, error) {
	if err := checkNewUser(&input, false); err != nil {
		return nil, err
	}
	if input.Role == "" {
		input.Role = RoleManager
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user User
	err = s.store.Update(ctx, func(tx store.Tx) error {
		var business Business
		if err := store.Load(ctx, tx, store.KeyBusiness, &business); err != nil {
			return err
		}
		var users []storedUser
		if err := store.Load(ctx, tx, store.KeyUsers, &users); err != nil {
			return err
		}
		if indexOf(users, func(u storedUser) bool { return strings.EqualFold(u.Username, input.Username) }) >= 0 {
			return conflictf("Username %s is already taken", input.Username)
		}
		user = User{
			ID:         uuid.NewString(),
			Username:   input.Username,
			Name:       input.Name,
			Role:       input.Role,
			Active:     true,
			BusinessID: business.ID,
		}
		users = append(users, storedUser{User: user, PasswordHash: string(hash)})
		return store.Save(ctx, tx, store.KeyUsers, users)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add user: %w", err)
	}
	return &user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < minPasswordLength {
		return validationf("New password must be at least %d characters long", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.store.Update(ctx, func(tx store.Tx) error {
		var users []storedUser
		if err := store.Load(ctx, tx, store.KeyUsers, &users); err != nil {
			return err
		}
		i := indexOf(users, func(u storedUser) bool { return u.ID == userID })
		if i < 0 {
			return notFoundf("User not found")
		}
		if bcrypt.CompareHashAndPassword([]byte(users[i].PasswordHash), []byte(current)) != nil {
			return validationf("Current password is incorrect")
		}
		users[i].PasswordHash = string(hash)
		return store.Save(ctx, tx, store.KeyUsers, users)
	})
	if err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

// checkNewUser trims and validates in. The confirmation is compared when
// confirm is set or when the caller supplied one.
func checkNewUser(in *NewUserInput, confirm bool) error {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	if in.Username == "" || in.Password == "" {
		return validationf("Username and password are required")
	}
	if (confirm || in.ConfirmPassword != "") && in.Password != in.ConfirmPassword {
		return validationf("Passwords do not match")
	}
	if len(in.Password) < minPasswordLength {
		return validationf("Password must be at least %d characters long", minPasswordLength)
	}
	if in.Role != "" && in.Role != RoleAdmin && in.Role != RoleManager {
		return validationf("Unknown role %q", in.Role)
	}
	return nil
}
