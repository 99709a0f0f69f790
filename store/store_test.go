package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitea.kood.tech/petrkubec/matchrelay/match"
)

// openTestStore connects to TEST_DATABASE_URL and starts from empty tables.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.Truncate(ctx))
	return s
}

func TestProfilesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	alice := match.NewProfile("alice", map[match.Field]string{
		match.FieldInterests: "Music, Art",
		match.FieldLiveIn:    "Paris",
	}).WithAge(29)
	bob := match.NewProfile("bob", map[match.Field]string{match.FieldGender: "male"})

	require.NoError(t, s.SaveProfile(ctx, alice))
	require.NoError(t, s.SaveProfile(ctx, bob))

	alice.Attrs[match.FieldLiveIn] = "Lyon"
	require.NoError(t, s.SaveProfile(ctx, alice))

	got, err := s.LoadProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].ID, "first save keeps its position")
	assert.Equal(t, "Lyon", got[0].Attrs[match.FieldLiveIn])
	require.NotNil(t, got[0].Age)
	assert.Equal(t, 29, *got[0].Age)

	require.NoError(t, s.DeleteProfile(ctx, "bob"))
	got, err = s.LoadProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	assert.ErrorIs(t, s.SaveProfile(ctx, match.Profile{}), match.ErrInvalidProfile)
}

func TestConnectionsNormalized(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveConnection(ctx, "b", "a"))
	require.NoError(t, s.SaveConnection(ctx, "a", "b"))
	require.NoError(t, s.SaveConnection(ctx, "c", "a"))
	assert.ErrorIs(t, s.SaveConnection(ctx, "a", "a"), match.ErrSelfConnection)

	edges, err := s.LoadConnections(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"a", "b"}, {"a", "c"}}, edges)

	require.NoError(t, s.DeleteConnection(ctx, "b", "a"))
	edges, err = s.LoadConnections(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"a", "c"}}, edges)
}

func TestImportAndRestore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	profiles := []match.Profile{
		match.NewProfile("1", nil),
		match.NewProfile("2", nil),
		match.NewProfile("3", nil),
	}
	require.NoError(t, s.Import(ctx, profiles, [][2]string{{"1", "2"}, {"3", "2"}}))

	reg, g := match.NewRegistry(), match.NewGraph()
	np, ne, err := s.Restore(ctx, reg, g)
	require.NoError(t, err)
	assert.Equal(t, 3, np)
	assert.Equal(t, 2, ne)
	assert.True(t, g.IsConnected("2", "3"))

	ids := make([]string, 0, reg.Len())
	for _, p := range reg.List() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestImportRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Import(ctx, []match.Profile{match.NewProfile("1", nil)}, [][2]string{{"1", "1"}})
	require.ErrorIs(t, err, match.ErrSelfConnection)

	got, err := s.LoadProfiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
