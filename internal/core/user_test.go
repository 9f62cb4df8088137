package core_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"invoizo/internal/core"
	"invoizo/internal/store"
)

func signup(t *testing.T, users core.UserService) *core.SignupResult {
	t.Helper()
	res, err := users.Signup(context.Background(),
		core.BusinessInput{Name: "Sharma Stores", Email: "owner@example.com", Country: "India"},
		core.NewUserInput{Username: "admin", Name: "Anil", Password: "s3cret-pass", ConfirmPassword: "s3cret-pass"},
	)
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	return res
}

func TestSignup_OnceOnly(t *testing.T) {
	s := store.NewMemoryStore()
	users := core.NewUserService(s)

	res := signup(t, users)
	if res.User.Role != core.RoleAdmin || res.User.BusinessID != res.Business.ID {
		t.Errorf("admin not linked to business: %+v", res)
	}
	if res.Business.Currency != "INR" {
		t.Errorf("currency default: got %q", res.Business.Currency)
	}

	_, err := users.Signup(context.Background(),
		core.BusinessInput{Name: "Second"},
		core.NewUserInput{Username: "x", Password: "password1", ConfirmPassword: "password1"},
	)
	if !errors.Is(err, core.ErrConflict) {
		t.Errorf("second signup: want ErrConflict, got %v", err)
	}
}

func TestSignup_PasswordMismatch(t *testing.T) {
	_, err := core.NewUserService(store.NewMemoryStore()).Signup(context.Background(),
		core.BusinessInput{Name: "Shop"},
		core.NewUserInput{Username: "admin", Password: "password1", ConfirmPassword: "password2"},
	)
	if !errors.Is(err, core.ErrValidation) || core.UserMessage(err) != "Passwords do not match" {
		t.Errorf("got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	users := core.NewUserService(s)

	if _, err := users.Authenticate(ctx, "admin", "whatever"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("before signup: want ErrNotFound, got %v", err)
	}
	signup(t, users)

	u, err := users.Authenticate(ctx, "admin", "s3cret-pass")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.LastLogin == "" {
		t.Error("lastLogin should be stamped")
	}
	if _, err := users.Authenticate(ctx, "admin", "wrong"); core.UserMessage(err) != "Invalid credentials" {
		t.Errorf("wrong password: got %v", err)
	}

	// The public user never carries the hash; the stored one does.
	b, _ := json.Marshal(u)
	if strings.Contains(string(b), "passwordHash") {
		t.Errorf("public user leaks hash: %s", b)
	}
	raw, _, _ := s.Get(ctx, store.KeyUsers)
	if !strings.Contains(string(raw), "passwordHash") || strings.Contains(string(raw), "s3cret-pass") {
		t.Errorf("stored users should hold a hash, not the password: %s", raw)
	}
}

func TestAddUserAndChangePassword(t *testing.T) {
	ctx := context.Background()
	users := core.NewUserService(store.NewMemoryStore())
	admin := signup(t, users).User

	m, err := users.AddUser(ctx, core.NewUserInput{Username: "clerk", Name: "Priya", Password: "clerkpass"})
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if m.Role != core.RoleManager {
		t.Errorf("default role: got %s", m.Role)
	}
	if _, err := users.AddUser(ctx, core.NewUserInput{Username: "CLERK", Password: "otherpass"}); !errors.Is(err, core.ErrConflict) {
		t.Errorf("duplicate username: want ErrConflict, got %v", err)
	}

	list, err := users.ListUsers(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListUsers: %d users, err %v", len(list), err)
	}

	if err := users.ChangePassword(ctx, admin.ID, "nope", "new-password"); core.UserMessage(err) != "Current password is incorrect" {
		t.Errorf("wrong current: got %v", err)
	}
	if err := users.ChangePassword(ctx, admin.ID, "s3cret-pass", "short"); !errors.Is(err, core.ErrValidation) {
		t.Errorf("short password: want ErrValidation, got %v", err)
	}
	if err := users.ChangePassword(ctx, admin.ID, "s3cret-pass", "new-password"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := users.Authenticate(ctx, "admin", "new-password"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
}
