package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stavrogyn/illumate-api/internal/auth"
	"github.com/stavrogyn/illumate-api/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testUser() *models.User {
	return &models.User{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Email:    "anna@example.com",
		Role:     models.RoleTherapist,
	}
}

func TestIssueAndValidateToken(t *testing.T) {
	user := testUser()

	token, expiresAt, err := auth.IssueToken(user, testSecret, 30*time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)

	claims, err := auth.ValidateToken(token, testSecret)
	require.NoError(t, err)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, user.TenantID, claims.TenantID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, models.RoleTherapist, claims.Role)
	assert.NotEmpty(t, claims.ID, "token must carry a jti for revocation")
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, _, err := auth.IssueToken(testUser(), testSecret, time.Minute)
	require.NoError(t, err)

	_, err = auth.ValidateToken(token, "another-secret-another-secret-1234")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	token, _, err := auth.IssueToken(testUser(), testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = auth.ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := auth.ValidateToken("not.a.token", testSecret)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestIssueToken_UniqueJTI(t *testing.T) {
	user := testUser()

	t1, _, err := auth.IssueToken(user, testSecret, time.Minute)
	require.NoError(t, err)
	t2, _, err := auth.IssueToken(user, testSecret, time.Minute)
	require.NoError(t, err)

	c1, err := auth.ValidateToken(t1, testSecret)
	require.NoError(t, err)
	c2, err := auth.ValidateToken(t2, testSecret)
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)
}
