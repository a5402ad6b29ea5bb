package managers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badili/odk-dashboard3/internal/schemas"
)

func newTestUser() *schemas.User {
	userId := uuid.New()
	return &schemas.User{
		ID:       &userId,
		Username: "testUser",
		Email:    "test@example.com",
		Password: "$2a$10$abcdefghijklmnopqrstuvwxyz0123456789abcdefghijklmnopq",
	}
}

func TestIssueAndValidate(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), 2*time.Hour).(*TokenManager)
	user := newTestUser()

	token := tm.Issue(user)
	assert.True(t, tm.Validate(user, token))
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), 2*time.Hour).(*TokenManager)
	user := newTestUser()

	token := tm.Issue(user)

	assert.False(t, tm.Validate(user, token+"0"))
	assert.False(t, tm.Validate(user, "nonsense"))
	assert.False(t, tm.Validate(user, ""))
}

func TestValidateRejectsAfterPasswordChange(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), 2*time.Hour).(*TokenManager)
	user := newTestUser()

	token := tm.Issue(user)
	require.True(t, tm.Validate(user, token))

	user.Password = "$2a$10$completelydifferenthash0123456789abcdefghijklmnopqrst"
	assert.False(t, tm.Validate(user, token))
}

func TestValidateRejectsAfterLogin(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), 2*time.Hour).(*TokenManager)
	user := newTestUser()

	token := tm.Issue(user)
	require.True(t, tm.Validate(user, token))

	lastLogin := time.Now().Add(time.Minute)
	user.LastLogin = &lastLogin
	assert.False(t, tm.Validate(user, token))
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), 2*time.Hour).(*TokenManager)
	user := newTestUser()

	issuedAt := time.Now()
	tm.now = func() time.Time { return issuedAt }
	token := tm.Issue(user)

	tm.now = func() time.Time { return issuedAt.Add(2*time.Hour - time.Minute) }
	assert.True(t, tm.Validate(user, token))

	tm.now = func() time.Time { return issuedAt.Add(2*time.Hour + time.Minute) }
	assert.False(t, tm.Validate(user, token))
}

func TestValidateRejectsFutureTimestamp(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), 2*time.Hour).(*TokenManager)
	user := newTestUser()

	issuedAt := time.Now()
	tm.now = func() time.Time { return issuedAt.Add(time.Hour) }
	token := tm.Issue(user)

	tm.now = func() time.Time { return issuedAt }
	assert.False(t, tm.Validate(user, token))
}

func TestValidateRejectsTokenOfOtherUser(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), 2*time.Hour).(*TokenManager)
	alice := newTestUser()
	bob := newTestUser()

	token := tm.Issue(alice)
	assert.False(t, tm.Validate(bob, token))
}

func TestUIDRoundTrip(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), 2*time.Hour).(*TokenManager)
	userId := uuid.New()

	encoded := tm.EncodeUID(userId)
	decoded, err := tm.DecodeUID(encoded)
	require.NoError(t, err)
	assert.Equal(t, userId, decoded)
}

func TestDecodeUIDRejectsGarbage(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), 2*time.Hour).(*TokenManager)

	_, err := tm.DecodeUID("not/base64/!")
	assert.Error(t, err)

	_, err = tm.DecodeUID("c2hvcnQ")
	assert.Error(t, err)
}
