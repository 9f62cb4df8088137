package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"invoizo/internal/app"
	"invoizo/internal/core"

	"github.com/golang-jwt/jwt/v5"
)

const authCookie = "auth_token"

type authClaimsKey struct{}

// AuthClaims holds the authenticated user's identity extracted from the JWT.
type AuthClaims struct {
	UserID     string
	BusinessID string
	Role       core.Role
}

// authFromContext returns the auth claims stored in ctx, or nil.
func authFromContext(ctx context.Context) *AuthClaims {
	v, _ := ctx.Value(authClaimsKey{}).(*AuthClaims)
	return v
}

// jwtClaims is the JWT payload struct used for signing and parsing. The user
// id travels as the subject.
type jwtClaims struct {
	BusinessID string    `json:"business_id"`
	Role       core.Role `json:"role"`
	jwt.RegisteredClaims
}

func (h *Handler) parseToken(raw string) (*AuthClaims, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(h.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return &AuthClaims{UserID: claims.Subject, BusinessID: claims.BusinessID, Role: claims.Role}, nil
}

// RequireAuth is chi middleware that validates the auth_token cookie and injects
// AuthClaims into the request context. Returns 401 if the token is absent or invalid.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(authCookie)
		if err != nil {
			writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}
		claims, err := h.parseToken(cookie.Value)
		if err != nil {
			writeError(w, r, "invalid or expired token", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), authClaimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after RequireAuth.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := authFromContext(r.Context())
		if claims == nil || claims.Role != core.RoleAdmin {
			writeError(w, r, "admin access required", "FORBIDDEN", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// issueSession signs a token for u and sets it as the auth cookie.
func (h *Handler) issueSession(w http.ResponseWriter, u *core.User) error {
	now := time.Now()
	claims := &jwtClaims{
		BusinessID: u.BusinessID,
		Role:       u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.jwtSecret))
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.tokenTTL.Seconds()),
	})
	return nil
}

// signup handles POST /api/auth/signup and logs the new admin in.
func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req app.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if err := h.issueSession(w, &res.User); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, res)
}

// login handles POST /api/auth/login.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req app.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.Login(r.Context(), req)
	if errors.Is(err, core.ErrValidation) {
		writeError(w, r, core.UserMessage(err), "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if err := h.issueSession(w, user); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, user)
}

// logout handles POST /api/auth/logout and clears the auth cookie.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

// me handles GET /api/auth/me.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	user, err := h.svc.GetUser(r.Context(), claims.UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, user)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, users)
}

func (h *Handler) addUser(w http.ResponseWriter, r *http.Request) {
	var req core.NewUserInput
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.svc.AddUser(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, user)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req app.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	claims := authFromContext(r.Context())
	if err := h.svc.ChangePassword(r.Context(), claims.UserID, req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
