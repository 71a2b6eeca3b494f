package auth

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/micportal/core"
)

func newToken(t *testing.T, role string, exp time.Time) string {
	claims := Claims{
		StandardClaims: jwt.StandardClaims{Subject: "u-1", ExpiresAt: exp.Unix()},
		UserID:         "u-1",
		Role:           Role(role),
		Email:          "jane@mic.test",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("portal-secret"))
	require.NoError(t, err)
	return token
}

func TestParseToken(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	NowFunc = func() time.Time { return now }
	defer func() { NowFunc = time.Now }()

	tests := []struct {
		name     string
		token    string
		wantRole Role
		wantErr  bool
	}{
		{name: "empty", token: "  ", wantErr: true},
		{name: "garbage", token: "not.a.jwt", wantErr: true},
		{name: "expired", token: newToken(t, "ADMIN", now.Add(-time.Minute)), wantErr: true},
		{name: "admin", token: newToken(t, "ADMIN", now.Add(time.Hour)), wantRole: RoleAdmin},
		{name: "faculty lower case", token: newToken(t, "faculty", now.Add(time.Hour)), wantRole: RoleFaculty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseToken(tt.token)
			if tt.wantErr {
				assert.Equal(t, core.ErrUnauthenticated, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, claims.Role)
			assert.Equal(t, "u-1", claims.UserID)
			assert.Equal(t, "jane@mic.test", claims.Email)
		})
	}
}

func TestNewSession(t *testing.T) {
	token := newToken(t, "FACULTY", time.Now().Add(time.Hour))
	sess, err := NewSession(token)
	require.NoError(t, err)
	assert.Equal(t, token, sess.Token)
	assert.True(t, sess.Role().IsFaculty())
	assert.False(t, sess.Role().IsAdmin())
}
