// Package dictionary is an in-memory approximate string matcher. Every word is
// indexed under all of its variants with up to MaxDistance bytes deleted; a
// query walks its own deletion variants, probes the index at each one and
// rebuilds an edit distance from the deletions made on both sides.
//
// A Dictionary has no internal locking. Mutating calls (Load, AddWord) must
// not overlap with each other or with queries; queries may run concurrently
// once no writer is active.
package dictionary

import (
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/fastspell/pkg/errors"
)

const (
	// MaxDistance is the largest edit distance the index is built for.
	MaxDistance = 2
	// MaxWordLen bounds word length: words must be strictly shorter.
	MaxWordLen = 255
	// DefaultDistance asks for MaxDistance.
	DefaultDistance = -1
)

// Match is the closest dictionary word found for a query. Count is the number
// of index entries that reached Distance, so ties are visible to the caller.
type Match struct {
	Word     string `json:"word"`
	Distance int    `json:"distance"`
	Count    int    `json:"count"`
}

func (m Match) String() string {
	return fmt.Sprintf("(%s, d=%d, c=%d)", m.Word, m.Distance, m.Count)
}

// Stats describes the size of a Dictionary.
type Stats struct {
	Words         int `json:"words"`
	Keys          int `json:"keys"`
	Postings      int `json:"postings"`
	MaxWordLength int `json:"max_word_length"`
}

type Dictionary struct {
	store *WordStore
	index *Index
}

func New() *Dictionary {
	store := NewWordStore()
	return &Dictionary{
		store: store,
		index: NewIndex(store),
	}
}

// Load replaces the contents of the dictionary with words. Every word is
// checked before anything is dropped, so a rejected list leaves the
// dictionary as it was.
func (d *Dictionary) Load(words []string) error {
	for i, w := range words {
		if err := checkWord(w); err != nil {
			return fmt.Errorf("word %d: %w", i, err)
		}
	}
	store := NewWordStore()
	index := NewIndex(store)
	for i, w := range words {
		if _, err := insert(store, index, w); err != nil {
			return fmt.Errorf("word %d: %w", i, err)
		}
	}
	d.store, d.index = store, index
	return nil
}

// AddWord indexes one more word. Adding a word that is already present is a
// no-op. It reports whether the word was new.
func (d *Dictionary) AddWord(word string) (bool, error) {
	if err := checkWord(word); err != nil {
		return false, err
	}
	return insert(d.store, d.index, word)
}

func insert(store *WordStore, index *Index, word string) (bool, error) {
	id, existed := store.Intern(word)
	if existed {
		return false, nil
	}
	if err := index.Add(id, store.Word(id), MaxDistance); err != nil {
		return false, err
	}
	return true, nil
}

// HasMatches reports whether some word lies within maxDistance of word.
// A negative distance means MaxDistance.
func (d *Dictionary) HasMatches(word string, maxDistance int) (bool, error) {
	maxDistance, err := checkQuery(word, maxDistance)
	if err != nil {
		return false, err
	}
	best, err := d.search(word, maxDistance, true)
	if err != nil {
		return false, err
	}
	return best.distance <= maxDistance, nil
}

// BestMatch returns the closest word within maxDistance of word. The boolean
// is false when there is none. A negative distance means MaxDistance.
func (d *Dictionary) BestMatch(word string, maxDistance int) (Match, bool, error) {
	maxDistance, err := checkQuery(word, maxDistance)
	if err != nil {
		return Match{}, false, err
	}
	best, err := d.search(word, maxDistance, false)
	if err != nil {
		return Match{}, false, err
	}
	if best.distance > maxDistance {
		return Match{}, false, nil
	}
	return Match{
		Word:     d.store.Word(best.word),
		Distance: best.distance,
		Count:    best.count,
	}, true, nil
}

// Contains reports whether word is in the dictionary.
func (d *Dictionary) Contains(word string) (bool, error) {
	return d.HasMatches(word, 0)
}

// MaxWordLength is the length of the longest word stored so far.
func (d *Dictionary) MaxWordLength() int {
	return d.store.MaxLen()
}

func (d *Dictionary) Stats() Stats {
	return Stats{
		Words:         d.store.Len(),
		Keys:          d.index.Keys(),
		Postings:      d.index.Postings(),
		MaxWordLength: d.store.MaxLen(),
	}
}

func checkWord(word string) error {
	if len(word) >= MaxWordLen {
		return fmt.Errorf("%w: length %d, must be below %d", apperrors.ErrWordTooLong, len(word), MaxWordLen)
	}
	return nil
}

func checkQuery(word string, maxDistance int) (int, error) {
	if maxDistance > MaxDistance {
		return 0, fmt.Errorf("%w: %d exceeds the maximum of %d", apperrors.ErrInvalidDistance, maxDistance, MaxDistance)
	}
	if maxDistance < 0 {
		maxDistance = MaxDistance
	}
	if err := checkWord(word); err != nil {
		return 0, err
	}
	return maxDistance, nil
}
