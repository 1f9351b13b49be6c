package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneMatchesSentinel(t *testing.T) {
	err := Clone(ErrNotFound, "course not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "course not found", err.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestWrapAsKeepsCause(t *testing.T) {
	err := WrapAs(ErrConnectivity, sql.ErrConnDone, "")
	assert.True(t, Is(err, ErrConnectivity))
	assert.True(t, errors.Is(err, sql.ErrConnDone))

	wrapped := fmt.Errorf("find credentials: %w", err)
	assert.True(t, Is(wrapped, ErrConnectivity))
	assert.Equal(t, ErrConnectivity.Code, FromError(wrapped).Code)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	assert.Nil(t, FromError(nil))
	e := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, e.Code)
	assert.Equal(t, ErrInternal.Status, e.Status)
}
