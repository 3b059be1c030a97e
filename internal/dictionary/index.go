package dictionary

import "fmt"

// Posting records one deletion path from a dictionary word to an index key.
// A word reaches the same key once per distinct subset of deleted positions.
type Posting struct {
	Word      WordID
	Depth     uint8
	Deletions [MaxDistance]uint8
}

// LastDeletion returns the position of the most recent deletion, or -1 when
// the key is the word itself.
func (p Posting) LastDeletion() int {
	if p.Depth == 0 {
		return -1
	}
	return int(p.Deletions[p.Depth-1])
}

type PostingList []Posting

// Index maps every deletion variant of every stored word to the postings
// that reach it.
type Index struct {
	store    *WordStore
	buckets  map[string]int32
	lists    []PostingList
	postings int
}

func NewIndex(store *WordStore) *Index {
	return &Index{
		store:   store,
		buckets: make(map[string]int32),
	}
}

// Add indexes every variant of word reachable with up to maxDepth deletions.
// The word must already be interned as id.
func (ix *Index) Add(id WordID, word string, maxDepth int) error {
	_, err := Deletions(word, maxDepth, func(v *Variant) Action {
		ix.insert(v.Text, Posting{
			Word:      id,
			Depth:     uint8(v.Depth),
			Deletions: v.Deletions,
		})
		return Descend
	})
	if err != nil {
		return fmt.Errorf("indexing %q: %w", word, err)
	}
	return nil
}

func (ix *Index) insert(variant []byte, p Posting) {
	ix.postings++
	if b, ok := ix.buckets[string(variant)]; ok {
		ix.lists[b] = append(ix.lists[b], p)
		return
	}
	// The map keeps the key past this call, so it needs durable bytes:
	// the stored word when the variant is one, a fresh copy otherwise.
	key, ok := ix.store.Find(variant)
	if !ok {
		key = string(variant)
	}
	ix.buckets[key] = int32(len(ix.lists))
	ix.lists = append(ix.lists, PostingList{p})
}

// Lookup returns the postings stored under variant.
func (ix *Index) Lookup(variant []byte) PostingList {
	b, ok := ix.buckets[string(variant)]
	if !ok {
		return nil
	}
	return ix.lists[b]
}

// Keys is the number of distinct variants indexed.
func (ix *Index) Keys() int {
	return len(ix.buckets)
}

// Postings is the total number of postings across all keys.
func (ix *Index) Postings() int {
	return ix.postings
}
