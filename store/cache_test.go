package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingDirectory struct {
	names  map[string]string
	exists int
	lookup int
}

func (d *countingDirectory) UserExists(_ context.Context, id string) (bool, error) {
	d.exists++
	_, ok := d.names[id]
	return ok, nil
}

func (d *countingDirectory) DisplayName(_ context.Context, id string) (string, error) {
	d.lookup++
	name, ok := d.names[id]
	if !ok {
		return "", ErrNotFound
	}
	return name, nil
}

func TestCachedDirectoryCachesNames(t *testing.T) {
	next := &countingDirectory{names: map[string]string{"u1": "Alice"}}
	d := NewCachedDirectory(next, 8, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		name, err := d.DisplayName(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "Alice", name)
	}
	assert.Equal(t, 1, next.lookup)
}

func TestCachedDirectoryDoesNotCacheMisses(t *testing.T) {
	next := &countingDirectory{names: map[string]string{}}
	d := NewCachedDirectory(next, 8, time.Minute)
	ctx := context.Background()

	_, err := d.DisplayName(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	next.names["ghost"] = "Casper"
	name, err := d.DisplayName(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, "Casper", name)
	assert.Equal(t, 2, next.lookup)
}

func TestCachedDirectoryExistsIsNeverCached(t *testing.T) {
	next := &countingDirectory{names: map[string]string{"u1": "Alice"}}
	d := NewCachedDirectory(next, 8, time.Minute)
	ctx := context.Background()

	ok, err := d.UserExists(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	delete(next.names, "u1")
	ok, err = d.UserExists(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, next.exists)
}

func TestCachedDirectoryExpires(t *testing.T) {
	next := &countingDirectory{names: map[string]string{"u1": "Alice"}}
	d := NewCachedDirectory(next, 8, 20*time.Millisecond)
	ctx := context.Background()

	_, err := d.DisplayName(ctx, "u1")
	require.NoError(t, err)

	next.names["u1"] = "Alice B."
	require.Eventually(t, func() bool {
		name, err := d.DisplayName(ctx, "u1")
		return err == nil && name == "Alice B."
	}, time.Second, 10*time.Millisecond)
}
