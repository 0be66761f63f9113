package credential

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go-jobboard-client/internal/domain"
	"go-jobboard-client/pkg/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract runs the behaviour every CredentialStore must share.
func storeContract(t *testing.T, store domain.CredentialStore) {
	ctx := context.Background()
	verified := true
	profile := domain.Profile{
		UserID:              "u-1",
		DisplayName:         "Rina",
		Email:               "rina@example.com",
		Role:                domain.RoleRecruiter,
		ProfileCompleteness: 80,
		EmailVerified:       true,
		CompanyVerified:     &verified,
	}

	t.Run("Should load nothing from an empty store", func(t *testing.T) {
		creds, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, creds.Token)
		assert.Nil(t, creds.Profile)
	})

	t.Run("Should round trip token and profile", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "tok-1", profile))

		creds, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "tok-1", creds.Token)
		require.NotNil(t, creds.Profile)
		assert.Equal(t, profile.UserID, creds.Profile.UserID)
		assert.Equal(t, domain.RoleRecruiter, creds.Profile.Role)
		require.NotNil(t, creds.Profile.CompanyVerified)
		assert.True(t, *creds.Profile.CompanyVerified)
	})

	t.Run("Should overwrite on second save", func(t *testing.T) {
		profile.DisplayName = "Rina S."
		require.NoError(t, store.Save(ctx, "tok-2", profile))

		creds, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "tok-2", creds.Token)
		assert.Equal(t, "Rina S.", creds.Profile.DisplayName)
	})

	t.Run("Should clear both values", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx))
		creds, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, creds.Token)
		assert.Nil(t, creds.Profile)
		// clearing twice is fine
		assert.NoError(t, store.Clear(ctx))
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Save(ctx, "tok", domain.Profile{UserID: "u", Role: domain.RoleCandidate}))

	first, _ := s.Load(ctx)
	first.Profile.DisplayName = "mutated"

	second, _ := s.Load(ctx)
	assert.Empty(t, second.Profile.DisplayName)
}

func TestBoltStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.db")
	s, err := NewBoltStore(path)
	require.NoError(t, err)
	defer s.Close()

	storeContract(t, s)
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "creds.db")

	s, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "persisted", domain.Profile{UserID: "u-9", Role: domain.RoleCandidate}))
	require.NoError(t, s.Close())

	reopened, err := NewBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	creds, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "persisted", creds.Token)
	assert.Equal(t, "u-9", creds.Profile.UserID)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	storeContract(t, NewRedisStore(client, "test"))
}

func TestRedisStoreNamespaces(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	a := NewRedisStore(client, "a")
	b := NewRedisStore(client, "b")
	require.NoError(t, a.Save(ctx, "tok-a", domain.Profile{UserID: "a", Role: domain.RoleCandidate}))

	creds, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, creds.Token)
	assert.True(t, mr.Exists("jobboard:credentials:a:token"))
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := database.NewPostgresConnection(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	s := NewPostgresStore(pool, "test-"+t.Name())
	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.Clear(ctx))

	storeContract(t, s)
}
