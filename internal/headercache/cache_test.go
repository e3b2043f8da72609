package headercache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/goran-ethernal/ThorIndexor/internal/logger"
	"github.com/goran-ethernal/ThorIndexor/internal/testutil"
	"github.com/goran-ethernal/ThorIndexor/internal/thor/mocks"
	"github.com/goran-ethernal/ThorIndexor/pkg/config"
	"github.com/goran-ethernal/ThorIndexor/pkg/thor"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCache_GetFetchesOnce(t *testing.T) {
	ctx := context.Background()

	chain := testutil.NewChain(1_000)
	chain.ExtendN(2)
	header := chain.Header(chain.ID(2))

	client := mocks.NewClient(t)
	client.EXPECT().GetBlock(mock.Anything, thor.RevisionID(header.ID)).Return(header, nil).Once()

	cache, err := Open(nil, client, logger.GetDefaultLogger())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, cache.Close()) })

	first, err := cache.Get(ctx, header.ID)
	require.NoError(t, err)
	require.True(t, first.IsTrunk)

	second, err := cache.Get(ctx, header.ID)
	require.NoError(t, err)
	require.Equal(t, header.ParentID, second.ParentID)
	require.Equal(t, header.Number, second.Number)
	require.False(t, second.IsTrunk, "trunk status must not be served from the cache")
}

func TestCache_Unknown(t *testing.T) {
	chain := testutil.NewChain(1_000)

	cache, err := Open(&config.HeaderCacheConfig{}, chain, logger.GetDefaultLogger())
	require.NoError(t, err)
	defer cache.Close()

	header, err := cache.Get(context.Background(), chain.Fork(0, nil)[0])
	require.NoError(t, err)
	require.NotNil(t, header, "side blocks are reachable by id")

	header, err = cache.Get(context.Background(), [32]byte{0xff})
	require.NoError(t, err)
	require.Nil(t, header)
}

func TestCache_ClientError(t *testing.T) {
	boom := errors.New("node down")
	client := mocks.NewClient(t)
	client.EXPECT().GetBlock(mock.Anything, mock.Anything).Return(nil, boom)

	cache, err := Open(nil, client, logger.GetDefaultLogger())
	require.NoError(t, err)
	defer cache.Close()

	_, err = cache.Get(context.Background(), [32]byte{0x01})
	require.ErrorIs(t, err, boom)
}

func TestCache_OnDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "headers")

	chain := testutil.NewChain(1_000)
	chain.ExtendN(1)
	id := chain.ID(1)

	cache, err := Open(&config.HeaderCacheConfig{Path: path}, chain, logger.GetDefaultLogger())
	require.NoError(t, err)
	_, err = cache.Get(ctx, id)
	require.NoError(t, err)
	require.NoError(t, cache.Close())

	// reopened cache must not need the node
	client := mocks.NewClient(t)
	cache, err = Open(&config.HeaderCacheConfig{Path: path}, client, logger.GetDefaultLogger())
	require.NoError(t, err)
	defer cache.Close()

	header, err := cache.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, header.ID)
}
