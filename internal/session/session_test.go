package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreatesUniqueDirs(t *testing.T) {
	root := t.TempDir()

	a, err := New(root, Flags{})
	require.NoError(t, err)
	b, err := New(root, Flags{})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Dir, b.Dir)
	assert.Equal(t, filepath.Join(root, a.ID), a.Dir)

	_, err = uuid.Parse(a.ID)
	assert.NoError(t, err)

	info, err := os.Stat(a.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCarvePathAndCounter(t *testing.T) {
	s, err := New(t.TempDir(), Flags{})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(s.Dir, "file_0_4096.png"), s.CarvePath(4096, "png"))

	path, err := s.WriteCarve(4096, "png", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir, "file_0_4096.png"), path)
	assert.Equal(t, 1, s.Count())
	assert.Equal(t, filepath.Join(s.Dir, "file_1_0.txt"), s.CarvePath(0, "txt"))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))
}

func TestWriteCarveFailureKeepsCounter(t *testing.T) {
	s, err := New(t.TempDir(), Flags{})
	require.NoError(t, err)

	// a directory squatting on the output name makes the create fail
	require.NoError(t, os.Mkdir(s.CarvePath(0, "png"), 0755))

	_, err = s.WriteCarve(0, "png", []byte("data"))
	var outErr *OutputError
	require.ErrorAs(t, err, &outErr)
	assert.Equal(t, "create", outErr.Op)
	assert.Equal(t, 0, s.Count())
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0644))

	n, err := CopyFile(filepath.Join(dir, "dst"), src)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	_, err = CopyFile(filepath.Join(dir, "dst2"), filepath.Join(dir, "missing"))
	var outErr *OutputError
	require.ErrorAs(t, err, &outErr)
	assert.Equal(t, "open", outErr.Op)
}

func TestLimitReached(t *testing.T) {
	capped, err := New(t.TempDir(), Flags{})
	require.NoError(t, err)
	unlimited, err := New(t.TempDir(), Flags{All: true})
	require.NoError(t, err)

	for i := 0; i < MaxCarves; i++ {
		assert.False(t, capped.LimitReached())
		_, err := capped.WriteCarve(int64(i), "bin", nil)
		require.NoError(t, err)
		_, err = unlimited.WriteCarve(int64(i), "bin", nil)
		require.NoError(t, err)
	}
	assert.True(t, capped.LimitReached())
	assert.False(t, unlimited.LimitReached())
}

func TestNewFailsWhenRootIsFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(root, nil, 0644))

	_, err := New(root, Flags{})
	assert.Error(t, err)
}
