package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, goredis.UniversalClient, *Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	st, err := New(Config{Client: client, Namespace: "app", ScanBatch: 10})
	require.NoError(t, err)
	return mr, client, st
}

func TestNewNilClient(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestRoundTripAndMiss(t *testing.T) {
	_, _, st := setup(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "app:k", []byte("v"), time.Minute, nil, 0))

	got, ok, err := st.Get(ctx, "app:k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	_, ok, err = st.Get(ctx, "app:absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNativeExpiry(t *testing.T) {
	mr, _, st := setup(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "app:k", []byte("v"), time.Second, nil, 0))
	mr.FastForward(2 * time.Second)

	_, ok, err := st.Get(ctx, "app:k")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire via backend TTL")
}

func TestSetWithTagsRegistersMembership(t *testing.T) {
	mr, client, st := setup(t)
	ctx := context.Background()

	tag := "app:tag:tours"
	require.NoError(t, st.Set(ctx, "app:route:/tours", []byte("v"), time.Minute, []string{tag}, 90*time.Second))

	members, err := client.SMembers(ctx, tag).Result()
	require.NoError(t, err)
	assert.Contains(t, members, "app:route:/tours")

	// tag set carries its own expiry (member TTL + buffer)
	assert.Equal(t, 90*time.Second, mr.TTL(tag))
}

func TestTagTTLNeverShortened(t *testing.T) {
	mr, _, st := setup(t)
	ctx := context.Background()

	tag := "app:tag:tours"
	require.NoError(t, st.Set(ctx, "app:a", []byte("v"), time.Minute, []string{tag}, 90*time.Second))
	// a shorter-lived member must not pull the tag set's expiry down
	require.NoError(t, st.Set(ctx, "app:b", []byte("v"), 10*time.Second, []string{tag}, 30*time.Second))
	assert.GreaterOrEqual(t, mr.TTL(tag), 90*time.Second)

	// a longer-lived member extends it
	require.NoError(t, st.Set(ctx, "app:c", []byte("v"), 2*time.Minute, []string{tag}, 3*time.Minute))
	assert.GreaterOrEqual(t, mr.TTL(tag), 3*time.Minute)
}

func TestDelPattern(t *testing.T) {
	_, client, st := setup(t)
	ctx := context.Background()

	seed := map[string]string{
		"app:route:/tours":   "x",
		"app:route:/tours/1": "x",
		"app:user:1":         "x",
		"other:route:/x":     "foreign",
	}
	for k, v := range seed {
		require.NoError(t, client.Set(ctx, k, v, 0).Err())
	}

	n, err := st.DelPattern(ctx, "app:route:*")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, int64(0), client.Exists(ctx, "app:route:/tours").Val())
	assert.Equal(t, int64(1), client.Exists(ctx, "app:user:1").Val())
	assert.Equal(t, int64(1), client.Exists(ctx, "other:route:/x").Val())
}

func TestDelPatternSingleChar(t *testing.T) {
	_, client, st := setup(t)
	ctx := context.Background()

	for _, k := range []string{"app:abc", "app:ac", "app:abbc"} {
		require.NoError(t, client.Set(ctx, k, "x", 0).Err())
	}

	n, err := st.DelPattern(ctx, "app:a?c")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int64(0), client.Exists(ctx, "app:abc").Val())
	assert.Equal(t, int64(1), client.Exists(ctx, "app:ac").Val())
	assert.Equal(t, int64(1), client.Exists(ctx, "app:abbc").Val())
}

func TestDelPatternScansManyKeys(t *testing.T) {
	_, client, st := setup(t)
	ctx := context.Background()

	// more keys than one SCAN batch (ScanBatch=10) to exercise the cursor
	for i := 0; i < 250; i++ {
		require.NoError(t, client.Set(ctx, fmt.Sprintf("app:bulk:%03d", i), "x", 0).Err())
	}
	n, err := st.DelPattern(ctx, "app:bulk:*")
	require.NoError(t, err)
	assert.Equal(t, 250, n)
}

func TestInvalidateTag(t *testing.T) {
	_, client, st := setup(t)
	ctx := context.Background()

	tag := "app:tag:tours"
	require.NoError(t, st.Set(ctx, "app:k1", []byte("x"), time.Minute, []string{tag}, 90*time.Second))
	require.NoError(t, st.Set(ctx, "app:k2", []byte("x"), time.Minute, []string{tag}, 90*time.Second))
	require.NoError(t, st.Set(ctx, "app:k3", []byte("x"), time.Minute, nil, 0))

	n, err := st.InvalidateTag(ctx, tag)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, int64(0), client.Exists(ctx, "app:k1").Val())
	assert.Equal(t, int64(0), client.Exists(ctx, "app:k2").Val())
	assert.Equal(t, int64(0), client.Exists(ctx, tag).Val(), "tag set itself must be gone")
	assert.Equal(t, int64(1), client.Exists(ctx, "app:k3").Val())
}

func TestInvalidateTagAbsent(t *testing.T) {
	_, _, st := setup(t)

	n, err := st.InvalidateTag(context.Background(), "app:tag:nothing")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClearIsNamespaceScoped(t *testing.T) {
	_, client, st := setup(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "app:a", "x", 0).Err())
	require.NoError(t, client.Set(ctx, "app:tag:t", "x", 0).Err())
	require.NoError(t, client.Set(ctx, "unrelated:a", "x", 0).Err())

	require.NoError(t, st.Clear(ctx))

	assert.Equal(t, int64(0), client.Exists(ctx, "app:a").Val())
	assert.Equal(t, int64(0), client.Exists(ctx, "app:tag:t").Val())
	assert.Equal(t, int64(1), client.Exists(ctx, "unrelated:a").Val())
}

func TestPingReflectsConnectivity(t *testing.T) {
	mr, _, st := setup(t)
	ctx := context.Background()

	require.NoError(t, st.Ping(ctx))

	mr.Close()
	assert.Error(t, st.Ping(ctx))
}
