package dictionary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/fastspell/pkg/errors"
)

func TestWordStoreIntern(t *testing.T) {
	s := NewWordStore()

	a, existed := s.Intern("pret")
	assert.False(t, existed)
	b, existed := s.Intern("part")
	assert.False(t, existed)
	again, existed := s.Intern("pret")
	assert.True(t, existed)

	assert.Equal(t, a, again)
	assert.NotEqual(t, a, b)
	assert.Equal(t, "part", s.Word(b))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 4, s.MaxLen())

	found, ok := s.Find([]byte("part"))
	require.True(t, ok)
	assert.Equal(t, "part", found)
	_, ok = s.Find([]byte("par"))
	assert.False(t, ok)
}

func TestWordStoreIDsStable(t *testing.T) {
	s := NewWordStore()
	first, _ := s.Intern("first")
	for i := 0; i < 1000; i++ {
		s.Intern(string(rune('a'+i%26)) + string(rune('a'+i/26)))
	}
	assert.Equal(t, "first", s.Word(first))
}

func TestIndexPostings(t *testing.T) {
	s := NewWordStore()
	ix := NewIndex(s)

	id, _ := s.Intern("abc")
	require.NoError(t, ix.Add(id, s.Word(id), MaxDistance))

	assert.Equal(t, 7, ix.Postings())
	// "a", "b" and "c" are each reached once; "" has no depth-3 path.
	assert.Equal(t, 7, ix.Keys())

	exact := ix.Lookup([]byte("abc"))
	require.Len(t, exact, 1)
	assert.Equal(t, uint8(0), exact[0].Depth)
	assert.Equal(t, -1, exact[0].LastDeletion())

	ac := ix.Lookup([]byte("ac"))
	require.Len(t, ac, 1)
	assert.Equal(t, id, ac[0].Word)
	assert.Equal(t, uint8(1), ac[0].Depth)
	assert.Equal(t, 1, ac[0].LastDeletion())

	assert.Nil(t, ix.Lookup([]byte("")))
	assert.Nil(t, ix.Lookup([]byte("zz")))
}

func TestIndexSharedKeys(t *testing.T) {
	s := NewWordStore()
	ix := NewIndex(s)
	for _, w := range []string{"aba", "ab"} {
		id, _ := s.Intern(w)
		require.NoError(t, ix.Add(id, s.Word(id), MaxDistance))
	}

	// "ab" is both a word and a variant of "aba".
	ab := ix.Lookup([]byte("ab"))
	require.Len(t, ab, 2)
	assert.Equal(t, uint8(1), ab[0].Depth)
	assert.Equal(t, uint8(0), ab[1].Depth)

	// Two subsets of "aba" leave "a", and one of "ab" does.
	assert.Len(t, ix.Lookup([]byte("a")), 2+1)
}

func TestIndexRepeatedLetters(t *testing.T) {
	s := NewWordStore()
	ix := NewIndex(s)
	id, _ := s.Intern("aa")
	require.NoError(t, ix.Add(id, s.Word(id), MaxDistance))

	// Deleting either "a" reaches the same key by a different subset.
	assert.Len(t, ix.Lookup([]byte("a")), 2)
	assert.Len(t, ix.Lookup([]byte("")), 1)
	assert.Equal(t, 3, ix.Keys())
	assert.Equal(t, 4, ix.Postings())
}

func TestIndexAddRejectsLongWord(t *testing.T) {
	s := NewWordStore()
	ix := NewIndex(s)
	long := strings.Repeat("x", MaxWordLen)
	id, _ := s.Intern(long)

	err := ix.Add(id, long, MaxDistance)
	assert.ErrorIs(t, err, apperrors.ErrWordTooLong)
	assert.Zero(t, ix.Postings())
	assert.Zero(t, ix.Keys())
}
