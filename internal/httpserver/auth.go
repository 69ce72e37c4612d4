// apps/versus-server/internal/httpserver/auth.go
//
// Identity and admin authentication.
//   - Players identify by email (no password). Sign-up/login issue an HS256
//     JWT carrying email + name, stored in an HttpOnly cookie and also
//     accepted as "Authorization: Bearer".
//   - Admins log in with a password checked against a bcrypt hash and get a
//     bearer token with role=admin.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/wordle/apps/versus-server/internal/profile"
)

const (
	roleAdmin    = "admin"
	adminSubject = "admin"
	adminTTL     = 12 * time.Hour
)

// authUser is placed into request context by auth middleware.
type authUser struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

func userFrom(ctx context.Context) *authUser {
	me, _ := ctx.Value(ctxUserKey{}).(*authUser)
	return me
}

// mountAuthRoutes registers /auth/*.
func (s *Server) mountAuthRoutes(r chi.Router) {
	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/logout", s.handleLogout)
	r.With(s.requireAuth()).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, userFrom(r.Context()))
	})
}

type signupReq struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

type loginReq struct {
	Email string `json:"email"`
}

// handleSignup creates a profile, signs a JWT and sets the auth cookie.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body signupReq
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	p, err := s.profiles.SignUp(r.Context(), body.Email, body.FullName)
	switch {
	case errors.Is(err, profile.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, profile.ErrInvalidEmail), errors.Is(err, profile.ErrInvalidName):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("signup")
		writeError(w, http.StatusInternalServerError, "signup_failed")
		return
	}
	s.issue(w, p)
}

// handleLogin signs in an existing profile.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	p, err := s.profiles.Login(r.Context(), body.Email)
	switch {
	case errors.Is(err, profile.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, profile.ErrNotFound):
		writeError(w, http.StatusUnauthorized, "No account found with this email")
		return
	case err != nil:
		log.Error().Err(err).Msg("login")
		writeError(w, http.StatusInternalServerError, "login_failed")
		return
	}
	s.issue(w, p)
}

func (s *Server) issue(w http.ResponseWriter, p profile.Profile) {
	tok, exp, err := s.signJWT(p.Email, p.FullName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setAuthCookie(w, tok, exp)
	writeJSON(w, http.StatusOK, map[string]any{
		"email":     p.Email,
		"fullName":  p.FullName,
		"createdAt": p.CreatedAt,
		"token":     tok,
	})
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ------------------------------ JWT & cookies ------------------------------

// signJWT creates an HS256 JWT with email/name and the configured expiry.
func (s *Server) signJWT(email, name string) (string, time.Time, error) {
	now := s.clock()
	exp := now.Add(time.Duration(s.cfg.JWTExpiresDays) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"name":  name,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

func (s *Server) signAdminJWT() (string, error) {
	now := s.clock()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  adminSubject,
		"role": roleAdmin,
		"exp":  now.Add(adminTTL).Unix(),
		"iat":  now.Unix(),
	})
	return t.SignedString([]byte(s.cfg.JWTSecret))
}

// parseJWT validates an HS256 token and returns its claims.
func (s *Server) parseJWT(tok string) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.clock))
	if err != nil || !t.Valid {
		return nil, false
	}
	return claims, true
}

func (s *Server) cookie(value string, exp time.Time, maxAge int) *http.Cookie {
	secure := s.cfg.SecureCookies
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	return &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
		MaxAge:   maxAge,
	}
}

// setAuthCookie writes the auth token cookie.
func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, s.cookie(token, exp, 0))
}

// clearAuthCookie deletes the auth token cookie.
func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie("", time.Time{}, -1))
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// userFromToken resolves a player token to a live profile.
func (s *Server) userFromToken(ctx context.Context, tok string) (*authUser, bool) {
	if tok == "" {
		return nil, false
	}
	claims, ok := s.parseJWT(tok)
	if !ok {
		return nil, false
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, false
	}
	// the profile may have been deleted by an admin
	p, err := s.profiles.Get(ctx, email)
	if err != nil {
		return nil, false
	}
	return &authUser{Email: p.Email, FullName: p.FullName}, true
}

// ---------------------------- auth middleware ------------------------------

// withOptionalAuth decorates requests with user context if a valid JWT is present.
// It never 401s; used for routes where guests are allowed.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if me, ok := s.userFromToken(r.Context(), s.bearerOrCookie(r)); ok {
				r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, me))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth enforces a valid player JWT and injects authUser into request context.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := s.bearerOrCookie(r)
			if tok == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			me, ok := s.userFromToken(r.Context(), tok)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, me)))
		})
	}
}

// requireAdmin enforces a bearer token with role=admin.
func (s *Server) requireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(a), "bearer ") {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			claims, ok := s.parseJWT(strings.TrimSpace(a[7:]))
			if role, _ := claims["role"].(string); !ok || role != roleAdmin {
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// checkPassword is a bcrypt verifier.
func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
