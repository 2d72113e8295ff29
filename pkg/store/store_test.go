package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/architector1324/vnix/pkg/unit"
)

func TestRAMStore(t *testing.T) {
	s := NewRAMStore()

	path := []string{"task", "init", "gfx"}
	u := unit.Map(unit.E("fill", unit.Byte(0xff)))

	_, err := s.Load(path)
	assert.ErrorIs(t, err, ErrLoad)

	require.NoError(t, s.Save(path, u))

	got, err := s.Load(path)
	require.NoError(t, err)
	assert.True(t, unit.Equal(u, got))
}

func TestBoltStore(t *testing.T) {
	dir := t.TempDir()

	s, err := NewBoltStore(dir)
	require.NoError(t, err)

	path := []string{"db", "users"}
	u := unit.List(
		unit.Map(unit.E("ath", unit.Str("super"))),
		unit.PairOf(unit.Str("kill"), unit.UInt(2)),
	)

	require.NoError(t, s.Save(path, u))
	require.NoError(t, s.Close())

	// units survive reopening the file
	s, err = NewBoltStore(dir)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load(path)
	require.NoError(t, err)
	assert.True(t, unit.Equal(u, got))

	_, err = s.Load([]string{"missing"})
	assert.ErrorIs(t, err, ErrLoad)
}
