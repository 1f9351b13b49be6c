package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

func TestCacheRepositoryWithoutClientIsEmpty(t *testing.T) {
	repo := NewCacheRepository(nil, "records:", nil)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "announcements:institution", []int{1, 2}, 0))
	var dest []int
	assert.ErrorIs(t, repo.Get(ctx, "announcements:institution", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Delete(ctx, "announcements:institution"))
	assert.NoError(t, repo.Close())
	assert.Equal(t, "records:board", repo.key("board"))
}
