package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("JWT_SECRET", "cli-test-secret")
	t.Setenv("JWT_ISSUER", "bizledger-cli")

	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeed(t *testing.T) {
	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Regexp(t, `^Created [1-9][0-9]* accounts\.`, out)
}

func TestTrialBalanceOnEmptyLedger(t *testing.T) {
	out, err := run(t, "trial-balance", "--as-of", "2024-12-31")
	require.NoError(t, err)
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "Balanced as of 2024-12-31.")

	_, err = run(t, "trial-balance", "--as-of", "31/12/2024")
	assert.ErrorContains(t, err, "YYYY-MM-DD")
}

func TestReconcileWithNothingPending(t *testing.T) {
	out, err := run(t, "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "0 generated, 0 failed")
}

func TestMigrateNeedsPostgres(t *testing.T) {
	_, err := run(t, "migrate", "up")
	assert.ErrorContains(t, err, "postgres")
}

func TestCloseUnknownPeriod(t *testing.T) {
	_, err := run(t, "period", "close", "missing")
	assert.ErrorContains(t, err, "closing period missing")
}

func TestToken(t *testing.T) {
	out, err := run(t, "token", "alice", "--ttl", "5m")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(strings.TrimSpace(out), claims, func(*jwt.Token) (interface{}, error) {
		return []byte("cli-test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "bizledger-cli", claims.Issuer)
}
