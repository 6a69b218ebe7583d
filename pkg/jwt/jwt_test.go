package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestConfigureControlsIssuerAndExpiry(t *testing.T) {
	Configure("test-signing-secret", "rewards-test", 2)
	t.Cleanup(func() { Configure("your-super-secret-key-change-in-production", "go-rewards-admin", 24) })

	userID := uuid.New()
	token, err := GenerateToken(userID, "admin@example.com", "Admin", "MASTER_ADMIN", []string{"member:view"}, "v1")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "rewards-test", claims.Issuer)
	require.Equal(t, "v1", claims.TokenVersion)

	// Expiry follows the configured hours, not a hardcoded day
	ttl := time.Until(claims.ExpiresAt.Time)
	require.Greater(t, ttl, time.Hour)
	require.LessOrEqual(t, ttl, 2*time.Hour)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	Configure("first-secret", "", 0)
	token, err := GenerateToken(uuid.New(), "a@example.com", "A", "SUPPORT_ADMIN", nil, "v1")
	require.NoError(t, err)

	Configure("second-secret", "", 0)
	t.Cleanup(func() { Configure("your-super-secret-key-change-in-production", "go-rewards-admin", 24) })

	_, err = ValidateToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
