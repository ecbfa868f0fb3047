package domain_test

import (
	"testing"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestDescendants(t *testing.T) {
	accounts := []domain.Account{
		{AccountID: "root"},
		{AccountID: "a", ParentAccountID: ptr("root")},
		{AccountID: "b", ParentAccountID: ptr("a")},
		{AccountID: "c", ParentAccountID: ptr("b")},
		{AccountID: "other"},
	}

	got := domain.Descendants(accounts, "a")
	assert.Equal(t, map[string]bool{"b": true, "c": true}, got)
	assert.Len(t, domain.Descendants(accounts, "root"), 3)
	assert.Empty(t, domain.Descendants(accounts, "other"))
}

func TestParseAccountType(t *testing.T) {
	got, err := domain.ParseAccountType("income")
	require.NoError(t, err)
	assert.Equal(t, domain.Revenue, got)

	got, err = domain.ParseAccountType(" asset ")
	require.NoError(t, err)
	assert.Equal(t, domain.Asset, got)

	_, err = domain.ParseAccountType("goodwill")
	assert.Error(t, err)
}

func TestDateRange_Overlaps(t *testing.T) {
	fy24 := domain.DateRange{Start: date(2024, 1, 1), End: date(2024, 12, 31)}
	assert.True(t, fy24.Overlaps(domain.DateRange{Start: date(2024, 12, 31), End: date(2025, 12, 31)}))
	assert.False(t, fy24.Overlaps(domain.DateRange{Start: date(2025, 1, 1), End: date(2025, 12, 31)}))
	assert.True(t, fy24.Contains(date(2024, 6, 1)))
	assert.False(t, fy24.Contains(date(2023, 12, 31)))
}
