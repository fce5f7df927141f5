package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sinacrawler/pkg/config"
	errs "sinacrawler/pkg/errors"
	"sinacrawler/pkg/logger"
)

func strPtr(s string) *string { return &s }

func TestKey(t *testing.T) {
	assert.Equal(t, "sina:1669879400:his", Key("sina", "1669879400"))
}

func TestCheckpointJSONShape(t *testing.T) {
	data, err := json.Marshal(Checkpoint{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"oldest_create_at":null,"newest_create_at":null,"crawled_pages":0}`, string(data))

	data, err = json.Marshal(Checkpoint{NewestCreateAt: strPtr("2024-05-01"), CrawledPages: 7})
	require.NoError(t, err)
	assert.JSONEq(t, `{"oldest_create_at":null,"newest_create_at":"2024-05-01","crawled_pages":7}`, string(data))
}

func TestCloneIsDeep(t *testing.T) {
	cp := Checkpoint{NewestCreateAt: strPtr("2024-01-01")}
	clone := cp.Clone()
	*clone.NewestCreateAt = "2025-01-01"

	assert.Equal(t, "2024-01-01", *cp.NewestCreateAt)
	assert.False(t, cp.Equal(clone))
	assert.True(t, cp.Equal(cp.Clone()))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    Checkpoint
		wantErr bool
	}{
		{"full", `{"oldest_create_at":"2024-01-01","newest_create_at":"2024-02-01","crawled_pages":4}`,
			Checkpoint{OldestCreateAt: strPtr("2024-01-01"), NewestCreateAt: strPtr("2024-02-01"), CrawledPages: 4}, false},
		{"nulls", `{"oldest_create_at":null,"newest_create_at":null,"crawled_pages":0}`, Checkpoint{}, false},
		{"missing keys", `{}`, Checkpoint{}, false},
		{"not json", `oops`, Checkpoint{}, true},
		{"empty", ``, Checkpoint{}, true},
		{"null", `null`, Checkpoint{}, true},
		{"array", `[1,2]`, Checkpoint{}, true},
		{"negative pages", `{"crawled_pages":-1}`, Checkpoint{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %+v", got)
		})
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewRepository(store, "sina", logger.NewNopLogger())

	cp, err := repo.Load(ctx, "42")
	require.NoError(t, err)
	assert.True(t, Checkpoint{}.Equal(cp), "absent key yields zero checkpoint")

	saved := Checkpoint{OldestCreateAt: strPtr("2024-04-01"), NewestCreateAt: strPtr("2024-05-01"), CrawledPages: 3}
	require.NoError(t, repo.Save(ctx, "42", saved))
	assert.Equal(t, 1, store.Writes())

	raw, found, err := store.Get(ctx, "sina:42:his")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"oldest_create_at":"2024-04-01","newest_create_at":"2024-05-01","crawled_pages":3}`, raw)

	loaded, err := repo.Load(ctx, "42")
	require.NoError(t, err)
	assert.True(t, saved.Equal(loaded))

	require.NoError(t, repo.Reset(ctx, "42"))
	loaded, err = repo.Load(ctx, "42")
	require.NoError(t, err)
	assert.True(t, Checkpoint{}.Equal(loaded))
}

func TestRepositoryCorruptValue(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, "sina:42:his", "{not json"))

	_, err := NewRepository(store, "sina", logger.NewNopLogger()).Load(ctx, "42")
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeCheckpoint))
}

type failingStore struct{ MemoryStore }

func (f *failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func TestRepositoryStoreUnavailable(t *testing.T) {
	_, err := NewRepository(&failingStore{}, "sina", logger.NewNopLogger()).Load(context.Background(), "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, errs.IsType(err, errs.ErrorTypeCheckpoint))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	store, err := NewRedisStore(ctx, RedisOptions{Addr: mr.Addr(), DB: 3}, logger.NewNopLogger())
	require.NoError(t, err)
	defer store.Close()

	_, found, err := store.Get(ctx, "sina:1:his")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "sina:1:his", `{"crawled_pages":2}`))

	mr.Select(3)
	got, err := mr.Get("sina:1:his")
	require.NoError(t, err)
	assert.Equal(t, `{"crawled_pages":2}`, got)
	assert.Zero(t, mr.TTL("sina:1:his"))

	value, found, err := store.Get(ctx, "sina:1:his")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"crawled_pages":2}`, value)

	require.NoError(t, store.Delete(ctx, "sina:1:his"))
	_, found, err = store.Get(ctx, "sina:1:his")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(context.Background(), RedisOptions{Addr: addr}, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "checkpoints")

	store, err := NewFileStore(dir, logger.NewNopLogger())
	require.NoError(t, err)

	_, found, err := store.Get(ctx, "sina:42:his")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "sina:42:his", `{"crawled_pages":1}`))
	require.NoError(t, store.Set(ctx, "sina:42:his", `{"crawled_pages":2}`))

	data, err := os.ReadFile(filepath.Join(dir, "sina_42_his.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"crawled_pages":2}`, string(data))

	_, err = os.Stat(filepath.Join(dir, "sina_42_his.json.tmp"))
	assert.True(t, os.IsNotExist(err), "temporary file must not survive")

	require.NoError(t, store.Delete(ctx, "sina:42:his"))
	require.NoError(t, store.Delete(ctx, "sina:42:his"))
	_, found, err = store.Get(ctx, "sina:42:his")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNopLogger()

	store, err := NewStore(ctx, config.CheckpointConfig{Backend: config.BackendMemory}, log)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = NewStore(ctx, config.CheckpointConfig{Backend: config.BackendFile, FileDirectory: t.TempDir()}, log)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	mr := miniredis.RunT(t)
	store, err = NewStore(ctx, config.CheckpointConfig{Backend: config.BackendRedis, RedisAddr: mr.Addr()}, log)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, store)
	require.NoError(t, store.Close())

	_, err = NewStore(ctx, config.CheckpointConfig{Backend: "etcd"}, log)
	assert.Error(t, err)
}

func TestDefaultDirectoryHonoursXDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout is linux only")
	}
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")

	dir, err := DefaultDirectory()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "sinacrawler", "checkpoints"), dir)
}
