package token

import (
	"testing"
	"time"

	"github.com/smallbiznis/salesdesk/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	m, err := NewManager("test-secret", time.Hour, clk)
	require.NoError(t, err)

	raw, expiresAt, err := m.Issue("1234", "cashier")
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(time.Hour), expiresAt)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "1234", claims.Subject)
	assert.Equal(t, "cashier", claims.Role)
	assert.Len(t, claims.ID, 26)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	m, err := NewManager("test-secret", time.Minute, clk)
	require.NoError(t, err)

	raw, _, err := m.Issue("1234", "cashier")
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	_, err = m.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	clk := clock.NewFakeClock(time.Now())
	issuerA, err := NewManager("secret-a", time.Hour, clk)
	require.NoError(t, err)
	issuerB, err := NewManager("secret-b", time.Hour, clk)
	require.NoError(t, err)

	raw, _, err := issuerA.Issue("1", "admin")
	require.NoError(t, err)

	_, err = issuerB.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = issuerB.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager("", time.Hour, nil)
	assert.ErrorIs(t, err, ErrMissingSecret)
}
