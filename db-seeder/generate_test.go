package main

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitea.kood.tech/petrkubec/matchrelay/match"
)

func TestGenerateProfilesDeterministic(t *testing.T) {
	a := generateProfiles(rand.New(rand.NewSource(7)), 20)
	b := generateProfiles(rand.New(rand.NewSource(7)), 20)
	require.Len(t, a, 20)
	assert.Equal(t, a, b)

	for _, p := range a {
		for _, f := range match.Fields() {
			assert.True(t, p.Has(f), "profile %s missing %s", p.ID, f)
		}
		require.NotNil(t, p.Age)
		assert.GreaterOrEqual(t, *p.Age, 18)
		assert.LessOrEqual(t, *p.Age, 60)

		tokens := strings.Split(p.Attrs[match.FieldInterests], ",")
		assert.GreaterOrEqual(t, len(tokens), 1)
		assert.LessOrEqual(t, len(tokens), 4)
	}
}

func TestGenerateConnections(t *testing.T) {
	profiles := generateProfiles(rand.New(rand.NewSource(1)), 10)

	none := generateConnections(rand.New(rand.NewSource(1)), profiles, 0)
	assert.Equal(t, [][2]string{{"1", "2"}}, none, "first two are always linked")

	all := generateConnections(rand.New(rand.NewSource(1)), profiles, 1)
	assert.Len(t, all, 45)

	g := match.NewGraph()
	for _, e := range all {
		require.NoError(t, g.Connect(e[0], e[1]))
	}
	assert.Len(t, g.Edges(), 45, "no duplicate pairs")
}

func TestCfgValidate(t *testing.T) {
	ok := cfg{DSN: "postgres://x", Count: 1, ConnectRate: 0.5}
	assert.NoError(t, ok.validate())

	bad := []cfg{
		{Count: 1},
		{DSN: "x", Count: 0},
		{DSN: "x", Count: 1, ConnectRate: 1.5},
	}
	for _, c := range bad {
		assert.Error(t, c.validate())
	}
}
