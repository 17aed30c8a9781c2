package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSReadWriteDelete(t *testing.T) {
	s := NewOS(t.TempDir())

	require.NoError(t, s.Write("a/b/note.md", "hello\n"))
	content, err := s.Read("a/b/note.md")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", content)

	require.NoError(t, s.Delete("a/b/note.md"))
	_, err = s.Read("a/b/note.md")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete("a/b/note.md"), ErrNotFound)
}

func TestOSCreateRefusesOverwrite(t *testing.T) {
	s := NewOS(t.TempDir())

	require.NoError(t, s.Create("x.md", "one"))
	assert.Error(t, s.Create("x.md", "two"))

	content, err := s.Read("x.md")
	require.NoError(t, err)
	assert.Equal(t, "one", content)
}

func TestOSListFiltersAndSorts(t *testing.T) {
	s := NewOS(t.TempDir())

	require.NoError(t, s.Write("docs/b.md", "b"))
	require.NoError(t, s.Write("docs/a.md", "a"))
	require.NoError(t, s.Write("docs/skip.txt", "x"))
	require.NoError(t, s.Write("docs/sub/nested.md", "n"))

	paths, err := s.List("docs")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/a.md", "docs/b.md"}, paths)

	missing, err := s.List("nowhere")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
