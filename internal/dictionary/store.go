package dictionary

// WordID identifies a word held by a WordStore. IDs are dense and never reused.
type WordID int32

// WordStore owns the text of every dictionary word. It is append-only: an ID
// handed out once stays valid for the lifetime of the store.
type WordStore struct {
	words  []string
	lookup map[string]WordID
	maxLen int
}

func NewWordStore() *WordStore {
	return &WordStore{
		lookup: make(map[string]WordID),
	}
}

// Intern returns the ID of text, storing it first if needed. The boolean
// reports whether the word was already present.
func (s *WordStore) Intern(text string) (WordID, bool) {
	if id, ok := s.lookup[text]; ok {
		return id, true
	}
	id := WordID(len(s.words))
	s.words = append(s.words, text)
	s.lookup[text] = id
	if len(text) > s.maxLen {
		s.maxLen = len(text)
	}
	return id, false
}

// Find returns the stored copy of text, if any. Lookups with a converted
// byte slice do not allocate.
func (s *WordStore) Find(text []byte) (string, bool) {
	id, ok := s.lookup[string(text)]
	if !ok {
		return "", false
	}
	return s.words[id], true
}

func (s *WordStore) Word(id WordID) string {
	return s.words[id]
}

func (s *WordStore) Len() int {
	return len(s.words)
}

// MaxLen is the length of the longest word interned so far.
func (s *WordStore) MaxLen() int {
	return s.maxLen
}
