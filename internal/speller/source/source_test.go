package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWords(t *testing.T) {
	in := "prout\npret  \r\n\npart\t\n  tourte\n"
	words, err := ReadWords(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"prout", "pret", "part", "  tourte"}, words)
}

func TestReadWordsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadWords(ctx, strings.NewReader("a\nb\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("aba\nbab\n"), 0o644))

	f := File{Path: path}
	words, err := f.Words(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"aba", "bab"}, words)
	assert.Equal(t, "file:"+path, f.Name())

	_, err = File{Path: filepath.Join(t.TempDir(), "missing.txt")}.Words(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStaticCopies(t *testing.T) {
	list := []string{"a", "b"}
	s := Static{List: list}
	words, err := s.Words(context.Background())
	require.NoError(t, err)
	words[0] = "z"
	assert.Equal(t, "a", list[0])
	assert.Equal(t, "static", s.Name())
}

func TestPostgresQueries(t *testing.T) {
	assert.Equal(t, `SELECT "word" FROM "dictionary_words"`, selectQuery("dictionary_words", "word"))
	assert.Equal(t, `INSERT INTO "odd""name" ("w") VALUES ($1) ON CONFLICT DO NOTHING`, insertQuery(`odd"name`, "w"))
	assert.Equal(t,
		`CREATE TABLE IF NOT EXISTS "words" ("word" TEXT PRIMARY KEY, created_at TIMESTAMPTZ NOT NULL DEFAULT NOW())`,
		createQuery("words", "word"))
}
