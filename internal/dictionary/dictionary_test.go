package dictionary

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/hbollon/go-edlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/fastspell/pkg/errors"
)

func newLoaded(t *testing.T, words ...string) *Dictionary {
	t.Helper()
	d := New()
	require.NoError(t, d.Load(words))
	return d
}

func TestBestMatchMixedDictionary(t *testing.T) {
	d := newLoaded(t, "aaab", "rue du a", "abba", "aba", "bab")

	tests := []struct {
		query    string
		distance int
		count    int
		oneOf    []string
	}{
		{"abab", 1, 3, []string{"aba", "bab", "aaab"}},
		{"ab", 1, 2, []string{"aba", "bab"}},
		{"aba", 0, 1, []string{"aba"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			m, ok, err := d.BestMatch(tt.query, 2)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.distance, m.Distance)
			assert.Equal(t, tt.count, m.Count)
			assert.Contains(t, tt.oneOf, m.Word)
		})
	}
}

func TestBestMatchSubstitutions(t *testing.T) {
	d := newLoaded(t, "RUE DES MARGUETTES")

	m, ok, err := d.BestMatch("RUE DEs MARGUATTES", 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Match{Word: "RUE DES MARGUETTES", Distance: 2, Count: 1}, m)

	_, ok, err = d.BestMatch("RUE DEs MARGUATTES", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBestMatchCaseDiffers(t *testing.T) {
	d := newLoaded(t, "Saint Denis")

	m, ok, err := d.BestMatch("saint denis", 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Match{Word: "Saint Denis", Distance: 2, Count: 1}, m)
}

func TestBestMatchEditKinds(t *testing.T) {
	d := newLoaded(t, "prout", "pret", "part", "tourte")

	tests := []struct {
		name     string
		query    string
		word     string
		distance int
	}{
		{"two insertions", "tour", "tourte", 2},
		{"insertion", "pet", "pret", 1},
		{"deletion", "parti", "part", 1},
		{"substitution", "port", "part", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok, err := d.BestMatch(tt.query, 2)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.word, m.Word)
			assert.Equal(t, tt.distance, m.Distance)
		})
	}
}

func TestBestMatchTwoEdits(t *testing.T) {
	d := newLoaded(t, "prout", "pret", "part", "tourte")

	m, ok, err := d.BestMatch("pro", 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, m.Distance)
	assert.Equal(t, 3, m.Count)
	assert.Contains(t, []string{"prout", "pret", "part"}, m.Word)

	_, ok, err = d.BestMatch("pro", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDefaultDistance(t *testing.T) {
	d := newLoaded(t, "prout", "pret", "part", "tourte")

	m, ok, err := d.BestMatch("tour", DefaultDistance)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tourte", m.Word)

	found, err := d.HasMatches("pro", -5)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestHasMatches(t *testing.T) {
	d := newLoaded(t, "aaab", "rue du a", "abba", "aba", "bab")

	tests := []struct {
		query    string
		distance int
		want     bool
	}{
		{"aba", 0, true},
		{"abab", 0, false},
		{"abab", 1, true},
		{"xxxxxx", 2, false},
		{"rue du b", 1, true},
		{"", 2, false},
	}
	for _, tt := range tests {
		got, err := d.HasMatches(tt.query, tt.distance)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "query %q distance %d", tt.query, tt.distance)
	}
}

func TestHasMatchesMonotonic(t *testing.T) {
	d := newLoaded(t, "prout", "pret", "part", "tourte")

	for _, q := range []string{"pro", "tour", "port", "xyz", "p", "tourtes"} {
		prev := false
		for dist := 0; dist <= MaxDistance; dist++ {
			got, err := d.HasMatches(q, dist)
			require.NoError(t, err)
			if prev {
				assert.True(t, got, "query %q lost its match at distance %d", q, dist)
			}
			prev = got
		}
	}
}

func TestContains(t *testing.T) {
	d := newLoaded(t, "prout", "pret")

	ok, err := d.Contains("pret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Contains("pre")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmptyDictionary(t *testing.T) {
	d := New()

	_, ok, err := d.BestMatch("anything", 2)
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := d.HasMatches("", 2)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, d.MaxWordLength())
}

func TestEmptyWord(t *testing.T) {
	d := newLoaded(t, "", "ab")

	m, ok, err := d.BestMatch("a", 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, m.Distance)
	assert.Contains(t, []string{"", "ab"}, m.Word)

	found, err := d.Contains("")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestInvalidDistance(t *testing.T) {
	d := newLoaded(t, "aba")

	_, err := d.HasMatches("aba", MaxDistance+1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidDistance)

	_, _, err = d.BestMatch("aba", 7)
	assert.ErrorIs(t, err, apperrors.ErrInvalidDistance)
}

func TestWordTooLong(t *testing.T) {
	d := newLoaded(t, "aba", "bab")
	before := d.Stats()

	long := strings.Repeat("x", MaxWordLen)
	err := d.Load([]string{"ok", long})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrWordTooLong))
	assert.Equal(t, before, d.Stats())

	added, err := d.AddWord(long)
	assert.ErrorIs(t, err, apperrors.ErrWordTooLong)
	assert.False(t, added)
	assert.Equal(t, before, d.Stats())

	_, err = d.HasMatches(long, 1)
	assert.ErrorIs(t, err, apperrors.ErrWordTooLong)
	_, _, err = d.BestMatch(long, 1)
	assert.ErrorIs(t, err, apperrors.ErrWordTooLong)

	found, err := d.Contains("aba")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestLongestAcceptedWord(t *testing.T) {
	word := strings.Repeat("ab", (MaxWordLen-1)/2)
	d := newLoaded(t, word)
	assert.Equal(t, len(word), d.MaxWordLength())

	m, ok, err := d.BestMatch(word[1:], 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, m.Distance)
}

func TestMaxWordLength(t *testing.T) {
	d := New()
	assert.Equal(t, 0, d.MaxWordLength())

	_, err := d.AddWord("abc")
	require.NoError(t, err)
	_, err = d.AddWord("a")
	require.NoError(t, err)
	assert.Equal(t, 3, d.MaxWordLength())

	_, err = d.AddWord("abcdef")
	require.NoError(t, err)
	assert.Equal(t, 6, d.MaxWordLength())
}

func TestLoadReplacesContents(t *testing.T) {
	d := newLoaded(t, "aaab", "rue du a", "abba", "aba", "bab")
	require.NoError(t, d.Load([]string{"Saint Denis"}))

	found, err := d.Contains("aba")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, len("Saint Denis"), d.MaxWordLength())
	assert.Equal(t, 1, d.Stats().Words)
}

func TestAddWordExtends(t *testing.T) {
	d := newLoaded(t, "prout")

	added, err := d.AddWord("pret")
	require.NoError(t, err)
	assert.True(t, added)

	m, ok, err := d.BestMatch("pet", 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Match{Word: "pret", Distance: 1, Count: 1}, m)
}

// Duplicates are interned once, so the zero-depth posting a query meets first
// is the only one at its key.
func TestDuplicateWordsCountedOnce(t *testing.T) {
	d := newLoaded(t, "pret", "pret")
	before := d.Stats()

	added, err := d.AddWord("pret")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, before, d.Stats())

	m, ok, err := d.BestMatch("pret", 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Match{Word: "pret", Distance: 0, Count: 1}, m)

	// The repeated entry adds no postings, so a near miss is reached by
	// one path only.
	m, ok, err = d.BestMatch("pet", 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Match{Word: "pret", Distance: 1, Count: 1}, m)
}

// The scan of a bucket ends at a zero-depth posting, so ties reached through
// the same key depend on insertion order.
func TestZeroDepthEndsBucketScan(t *testing.T) {
	first := newLoaded(t, "ab", "aby")
	m, ok, err := first.BestMatch("abx", 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Match{Word: "ab", Distance: 1, Count: 1}, m)

	second := newLoaded(t, "aby", "ab")
	m, ok, err = second.BestMatch("abx", 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, m.Distance)
	assert.Equal(t, 2, m.Count)
}

func TestStats(t *testing.T) {
	d := newLoaded(t, "ab")
	// ab, b, a, "" under one word.
	assert.Equal(t, Stats{Words: 1, Keys: 4, Postings: 4, MaxWordLength: 2}, d.Stats())

	_, err := d.AddWord("ba")
	require.NoError(t, err)
	// ba and its own a, b, "" postings; only the key "ba" is new.
	assert.Equal(t, Stats{Words: 2, Keys: 5, Postings: 8, MaxWordLength: 2}, d.Stats())
}

func TestMatchString(t *testing.T) {
	m := Match{Word: "aba", Distance: 1, Count: 3}
	assert.Equal(t, "(aba, d=1, c=3)", m.String())
}

func TestAgreesWithLevenshtein(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	randomWord := func(maxLen int) string {
		b := make([]byte, rng.Intn(maxLen+1))
		for i := range b {
			b[i] = "abc"[rng.Intn(3)]
		}
		return string(b)
	}

	for trial := 0; trial < 2000; trial++ {
		words := make([]string, 1+rng.Intn(8))
		for i := range words {
			words[i] = randomWord(6)
		}
		d := newLoaded(t, words...)
		query := randomWord(6)

		nearest := MaxWordLen
		for _, w := range words {
			nearest = min(nearest, edlib.LevenshteinDistance(query, w))
		}

		for dist := 0; dist <= MaxDistance; dist++ {
			m, ok, err := d.BestMatch(query, dist)
			require.NoError(t, err)
			require.Equal(t, nearest <= dist, ok, "words %q query %q distance %d", words, query, dist)

			found, err := d.HasMatches(query, dist)
			require.NoError(t, err)
			require.Equal(t, ok, found, "words %q query %q distance %d", words, query, dist)

			if ok {
				require.Equal(t, nearest, m.Distance, "words %q query %q distance %d", words, query, dist)
				require.Equal(t, m.Distance, edlib.LevenshteinDistance(query, m.Word))
				require.GreaterOrEqual(t, m.Count, 1)
			}
		}
	}
}
