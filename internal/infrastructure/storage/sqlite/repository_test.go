package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbertone/inventario/internal/domain/entities"
	"github.com/sbertone/inventario/internal/infrastructure/config"
	"github.com/sbertone/inventario/internal/infrastructure/storage"
)

// setupTestRepo creates an in-memory SQLite repository for testing.
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(config.StorageConfig{SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	err = repo.EnsureSchema(context.Background())
	require.NoError(t, err)

	return repo
}

func TestNewRepository(t *testing.T) {
	t.Run("success with memory database", func(t *testing.T) {
		repo, err := NewRepository(config.StorageConfig{SQLitePath: ":memory:"})
		require.NoError(t, err)
		defer repo.Close()
		assert.NotNil(t, repo)
	})

	t.Run("creates parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "datos", "inventario.db")
		repo, err := NewRepository(config.StorageConfig{SQLitePath: path})
		require.NoError(t, err)
		defer repo.Close()
		assert.Equal(t, path, repo.Path())
	})

	t.Run("error with empty path", func(t *testing.T) {
		_, err := NewRepository(config.StorageConfig{})
		require.Error(t, err)
	})
}

func TestRepository_EnsureSchema(t *testing.T) {
	repo := setupTestRepo(t)

	var count int
	err := repo.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(storage.Documents), count)

	data, err := repo.ReadDocument(context.Background(), storage.DocFields)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestRepository_EnsureSchema_Idempotent(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.WriteDocument(ctx, storage.DocUnique, []byte(`["nombre"]`)))

	require.NoError(t, repo.EnsureSchema(ctx))

	data, err := repo.ReadDocument(ctx, storage.DocUnique)
	require.NoError(t, err)
	assert.Equal(t, `["nombre"]`, string(data))
}

func TestRepository_ReadMissingDocument(t *testing.T) {
	repo := setupTestRepo(t)

	data, err := repo.ReadDocument(context.Background(), "otro.json")

	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRepository_WriteUpdatesTimestamp(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	fixed := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	orig := timeNow
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = orig })

	require.NoError(t, repo.WriteDocument(ctx, storage.DocProduct, []byte(`[]`)))

	updated, err := repo.UpdatedAt(ctx, storage.DocProduct)
	require.NoError(t, err)
	assert.True(t, fixed.Equal(updated), "got %v", updated)

	_, err = repo.UpdatedAt(ctx, "otro.json")
	require.Error(t, err)
}

func TestStore_RoundTripOverSQLite(t *testing.T) {
	s := storage.NewStore(setupTestRepo(t))
	ctx := context.Background()

	schema := entities.Schema{
		{Name: "nombre", Type: entities.FieldTypeText},
		{Name: "stock", Type: entities.FieldTypeInteger},
	}
	require.NoError(t, s.SaveFields(ctx, schema))
	require.NoError(t, s.SaveUniqueFields(ctx, []string{"nombre"}))

	products := []entities.Product{{"nombre": "Mesa", "stock": int64(3)}}
	require.NoError(t, s.SaveProducts(ctx, products))

	loadedSchema, err := s.LoadFields(ctx)
	require.NoError(t, err)
	assert.Equal(t, schema, loadedSchema)

	unique, err := s.LoadUniqueFields(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"nombre"}, unique)

	loadedProducts, err := s.LoadProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, products, loadedProducts)
}

func TestStore_FileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventario.db")
	ctx := context.Background()
	cfg := config.StorageConfig{SQLitePath: path}

	repo, err := NewRepository(cfg)
	require.NoError(t, err)
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, storage.NewStore(repo).SaveUniqueFields(ctx, []string{"codigo"}))
	require.NoError(t, repo.Close())

	reopened, err := NewRepository(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	unique, err := storage.NewStore(reopened).LoadUniqueFields(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"codigo"}, unique)
}
