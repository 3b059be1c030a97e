package dictionary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/fastspell/pkg/errors"
)

func binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	r := 1
	for i := 1; i <= k; i++ {
		r = r * (n - k + i) / i
	}
	return r
}

func collect(t *testing.T, text string, maxDepth int) []Variant {
	t.Helper()
	var out []Variant
	_, err := Deletions(text, maxDepth, func(v *Variant) Action {
		c := *v
		c.Text = append([]byte(nil), v.Text...)
		out = append(out, c)
		return Descend
	})
	require.NoError(t, err)
	return out
}

func TestDeletionsCount(t *testing.T) {
	for _, text := range []string{"", "a", "ab", "abc", "aaaa", "RUE DES MARGUETTES", strings.Repeat("z", 254)} {
		for depth := 0; depth <= MaxDistance; depth++ {
			want := 0
			for k := 0; k <= depth; k++ {
				want += binomial(len(text), k)
			}
			got := len(collect(t, text, depth))
			assert.Equal(t, want, got, "text %q depth %d", text, depth)
		}
	}
}

func TestDeletionsVisitsEachSubsetOnce(t *testing.T) {
	text := "abcdef"
	seen := make(map[string]bool)
	for _, v := range collect(t, text, 2) {
		// Replay the recorded positions to recover which original indexes
		// were removed.
		idx := []int{0, 1, 2, 3, 4, 5}
		for _, pos := range v.Deletions[:v.Depth] {
			idx = append(idx[:pos], idx[pos+1:]...)
		}
		var kept strings.Builder
		for _, i := range idx {
			kept.WriteByte(text[i])
		}
		require.Equal(t, kept.String(), string(v.Text))

		key := string(v.Text)
		assert.False(t, seen[key], "subset leading to %q visited twice", key)
		seen[key] = true
	}
	assert.Len(t, seen, 1+6+15)
}

func TestDeletionsPositionsNonDecreasing(t *testing.T) {
	for _, v := range collect(t, "abcde", 2) {
		assert.Equal(t, len("abcde")-v.Depth, len(v.Text))
		if v.Depth == 2 {
			assert.LessOrEqual(t, v.Deletions[0], v.Deletions[1])
		}
	}
}

func TestDeletionsLastDeletion(t *testing.T) {
	vs := collect(t, "abc", 2)
	require.Equal(t, "abc", string(vs[0].Text))
	assert.Equal(t, -1, vs[0].LastDeletion())

	require.Equal(t, "bc", string(vs[1].Text))
	assert.Equal(t, 0, vs[1].LastDeletion())

	require.Equal(t, "c", string(vs[2].Text))
	assert.Equal(t, 0, vs[2].LastDeletion())

	require.Equal(t, "b", string(vs[3].Text))
	assert.Equal(t, 1, vs[3].LastDeletion())
}

func TestDeletionsPrune(t *testing.T) {
	var visited []string
	_, err := Deletions("abc", 2, func(v *Variant) Action {
		visited = append(visited, string(v.Text))
		if v.Depth == 1 {
			return Prune
		}
		return Descend
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"abc", "bc", "ac", "ab"}, visited)
}

func TestDeletionsStop(t *testing.T) {
	var visited []string
	completed, err := Deletions("abc", 2, func(v *Variant) Action {
		visited = append(visited, string(v.Text))
		if string(v.Text) == "c" {
			return Stop
		}
		return Descend
	})
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, []string{"abc", "bc", "c"}, visited)

	completed, err = Deletions("abc", 2, func(*Variant) Action { return Descend })
	require.NoError(t, err)
	assert.True(t, completed)
}

func TestDeletionsRejectsBadInput(t *testing.T) {
	visits := 0
	visit := func(*Variant) Action {
		visits++
		return Descend
	}

	_, err := Deletions(strings.Repeat("a", MaxWordLen), 1, visit)
	assert.ErrorIs(t, err, apperrors.ErrWordTooLong)

	_, err = Deletions("abcd", MaxDistance+1, visit)
	assert.ErrorIs(t, err, apperrors.ErrInvalidDistance)

	_, err = Deletions("abcd", -1, visit)
	assert.ErrorIs(t, err, apperrors.ErrInvalidDistance)

	assert.Zero(t, visits)
}

func TestAlignedDeletions(t *testing.T) {
	tests := []struct {
		a, b []uint8
		want int
	}{
		{nil, nil, 0},
		{[]uint8{3}, nil, 0},
		{[]uint8{3}, []uint8{3}, 1},
		{[]uint8{3}, []uint8{4}, 0},
		{[]uint8{2, 5}, []uint8{2, 5}, 2},
		{[]uint8{2, 2}, []uint8{2}, 1},
		{[]uint8{2, 2}, []uint8{2, 2}, 2},
		{[]uint8{1, 4}, []uint8{4, 6}, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, alignedDeletions(tt.a, tt.b), "%v vs %v", tt.a, tt.b)
	}
}
