package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybglist/mybglist-server/internal/domain"
	apperrors "github.com/mybglist/mybglist-server/internal/errors"
)

// cheapParams keep hashing fast in tests.
var cheapParams = Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func testKey() []byte {
	return []byte(strings.Repeat("k", keyLength))
}

func newTestTokenService(t *testing.T, d time.Duration) *TokenService {
	t.Helper()
	s, err := NewTokenService(testKey(), d)
	require.NoError(t, err)
	return s
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(cheapParams)

	encoded, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))

	assert.True(t, h.Verify(encoded, "correct horse battery staple"))
	assert.False(t, h.Verify(encoded, "wrong"))
	assert.False(t, h.Verify("not-a-hash", "correct horse battery staple"))

	// A hasher with different defaults still verifies older hashes.
	assert.True(t, NewPasswordHasher(DefaultArgon2Params).Verify(encoded, "correct horse battery staple"))
}

func TestPasswordHasher_Limits(t *testing.T) {
	h := NewPasswordHasher(cheapParams)

	_, err := h.Hash("")
	assert.Error(t, err)
	_, err = h.Hash(strings.Repeat("a", maxPasswordLength+1))
	assert.Error(t, err)
}

func TestPasswordHasher_SaltsDiffer(t *testing.T) {
	h := NewPasswordHasher(cheapParams)
	a, err := h.Hash("secret-password")
	require.NoError(t, err)
	b, err := h.Hash("secret-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTokenService_RoundTrip(t *testing.T) {
	s := newTestTokenService(t, 15*time.Minute)
	user := &domain.User{ID: "user-1", Email: "mod@example.com", Roles: []domain.Role{domain.RoleModerator}}

	token, expires, err := s.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expires, 5*time.Second)

	claims, err := s.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, []domain.Role{domain.RoleModerator}, claims.Roles)
	assert.True(t, strings.HasPrefix(claims.TokenID, "token-"))
	assert.True(t, claims.HasRole(domain.RoleModerator))
	assert.False(t, claims.HasRole(domain.RoleAdministrator))
}

func TestTokenService_Expired(t *testing.T) {
	s := newTestTokenService(t, time.Minute)
	token, _, err := s.GenerateAccessToken(&domain.User{ID: "user-1"})
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = s.VerifyAccessToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestTokenService_Rejects(t *testing.T) {
	s := newTestTokenService(t, time.Minute)

	_, err := s.VerifyAccessToken("v4.local.garbage")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	other, err := NewTokenService([]byte(strings.Repeat("z", keyLength)), time.Minute)
	require.NoError(t, err)
	token, _, err := other.GenerateAccessToken(&domain.User{ID: "user-1"})
	require.NoError(t, err)

	_, err = s.VerifyAccessToken(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestNewTokenService_KeyLength(t *testing.T) {
	_, err := NewTokenService([]byte("short"), time.Minute)
	assert.Error(t, err)
}

func TestAdministratorImpliesModerator(t *testing.T) {
	c := &AccessClaims{Roles: []domain.Role{domain.RoleAdministrator}}
	assert.True(t, c.HasRole(domain.RoleModerator))
	assert.True(t, c.HasRole(domain.RoleAdministrator))
}

func TestResolveKey(t *testing.T) {
	dir := t.TempDir()

	generated, err := ResolveKey("", dir)
	require.NoError(t, err)
	assert.Len(t, generated, keyLength)

	info, err := os.Stat(filepath.Join(dir, keyFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := ResolveKey("", dir)
	require.NoError(t, err)
	assert.Equal(t, generated, again, "key must be stable across restarts")

	explicit, err := ResolveKey(strings.Repeat("ab", keyLength), dir)
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), explicit[0])

	_, err = ResolveKey("abc", dir)
	assert.Error(t, err)
	_, err = ResolveKey(strings.Repeat("zz", keyLength), dir)
	assert.Error(t, err)
}
