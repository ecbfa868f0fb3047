package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestKind_MatchesParent(t *testing.T) {
	err := fmt.Errorf("create account 1100: %w", apperrors.ErrDuplicateAccountCode)

	assert.True(t, errors.Is(err, apperrors.ErrDuplicateAccountCode))
	assert.True(t, errors.Is(err, apperrors.ErrDuplicate))
	assert.False(t, errors.Is(err, apperrors.ErrValidation))
	assert.Equal(t, "DuplicateAccountCode", apperrors.KindCode(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ledger kind", fmt.Errorf("post: %w", apperrors.ErrUnbalancedJournalEntry), http.StatusBadRequest},
		{"not found kind", apperrors.ErrTransactionNotFound, http.StatusNotFound},
		{"generic validation", fmt.Errorf("%w: bad date", apperrors.ErrValidation), http.StatusBadRequest},
		{"generic conflict", apperrors.ErrConflict, http.StatusConflict},
		{"app error", apperrors.NewAppError(http.StatusServiceUnavailable, "db down", errors.New("dial")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.HTTPStatus(tt.err))
		})
	}
}
