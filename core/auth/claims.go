package auth

import (
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/trezcool/micportal/core"
)

type Role string

// Roles
const (
	RoleAdmin   Role = "ADMIN"
	RoleFaculty Role = "FACULTY"
	RoleStudent Role = "STUDENT"
)

var NowFunc = time.Now // mockable

func ParseRole(s string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(s)))
}

func (r Role) IsAdmin() bool   { return r == RoleAdmin }
func (r Role) IsFaculty() bool { return r == RoleFaculty }

// Claims represents the claims the portal puts in its bearer tokens.
type Claims struct {
	jwt.StandardClaims
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	Email  string `json:"email"`
}

// Valid only checks the expiry: the signature belongs to the portal and is verified there.
func (c Claims) Valid() error {
	if c.ExpiresAt != 0 && NowFunc().Unix() > c.ExpiresAt {
		return errors.New("token is expired")
	}
	return nil
}

// ParseToken decodes the claims of a portal token without verifying its signature.
// An empty, malformed or expired token yields core.ErrUnauthenticated.
func ParseToken(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, core.ErrUnauthenticated
	}

	claims := new(Claims)
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrap(core.ErrUnauthenticated, err.Error())
	}
	if err := claims.Valid(); err != nil {
		return nil, errors.Wrap(core.ErrUnauthenticated, err.Error())
	}
	claims.Role = ParseRole(string(claims.Role))
	return claims, nil
}

// Session is an authenticated portal user: its raw token and decoded claims.
type Session struct {
	Token  string
	Claims Claims
}

func NewSession(token string) (Session, error) {
	claims, err := ParseToken(token)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, Claims: *claims}, nil
}

func (s Session) Role() Role { return s.Claims.Role }

// LoginRequest is sent to the portal to obtain a token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is what the portal answers to a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
