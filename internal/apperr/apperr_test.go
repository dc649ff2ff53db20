package apperr

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	base := NotFound("Formation not found")
	wrapped := errors.Wrap(base, "load formation")
	wrapped = fmt.Errorf("handler: %w", wrapped)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.Equal(t, http.StatusNotFound, KindOf(wrapped).Status())
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(sql.ErrConnDone))
	assert.False(t, Is(nil, KindInternal))
}

func TestStatuses(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:  http.StatusBadRequest,
		KindNotFound:    http.StatusNotFound,
		KindAuth:        http.StatusUnauthorized,
		KindConflict:    http.StatusConflict,
		KindRateLimited: http.StatusTooManyRequests,
		KindInternal:    http.StatusInternalServerError,
	}
	for k, want := range cases {
		assert.Equal(t, want, k.Status(), k.String())
	}
}

func TestErrorMessage(t *testing.T) {
	e := Internal(sql.ErrTxDone, "update failed")
	assert.Contains(t, e.Error(), "update failed")
	assert.True(t, errors.Is(e, sql.ErrTxDone))
}
