package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate("guild-1", "user-7")
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "guild-1", claims.GuildID)
	assert.Equal(t, "user-7", claims.UserID)
}

func TestJWTManager_GenerateRequiresGuild(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	_, err := m.Generate("", "user-7")
	assert.Error(t, err)
}

func TestJWTManager_Validate(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	good, err := m.Generate("guild-1", "")
	require.NoError(t, err)

	expired := NewJWTManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.Generate("guild-1", "")
	require.NoError(t, err)

	other, err := NewJWTManager("other-secret", time.Hour).Generate("guild-1", "")
	require.NoError(t, err)

	noGuild, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "valid", token: good},
		{name: "expired", token: stale, wantErr: true},
		{name: "wrong secret", token: other, wantErr: true},
		{name: "missing guild claim", token: noGuild, wantErr: true},
		{name: "garbage", token: "not-a-token", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Validate(tt.token)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
