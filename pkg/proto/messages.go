// Package proto defines the message types exchanged over the internal
// JSON-over-TCP RPC layer (see pkg/grpc) between the speller service and its
// clients.
//
// The types are hand-written and carry JSON struct tags only.
package proto

// RPC method names registered by the speller service.
const (
	MethodBestMatch  = "Speller.BestMatch"
	MethodHasMatches = "Speller.HasMatches"
	MethodContains   = "Speller.Contains"
	MethodAddWords   = "Speller.AddWords"
	MethodStats      = "Speller.Stats"
)

// ---------- Lookup ----------

// MatchRequest is the input to the BestMatch and HasMatches RPCs. A negative
// distance asks for the service default.
type MatchRequest struct {
	Word     string `json:"word"`
	Distance int    `json:"distance"`
}

// MatchResponse is the output of the BestMatch RPC.
type MatchResponse struct {
	Query    string `json:"query"`
	Found    bool   `json:"found"`
	Word     string `json:"word,omitempty"`
	Distance int    `json:"distance"`
	Count    int    `json:"count"`
	CacheHit bool   `json:"cache_hit"`
}

// CheckResponse is the output of the HasMatches and Contains RPCs.
type CheckResponse struct {
	Query    string `json:"query"`
	Distance int    `json:"distance"`
	Match    bool   `json:"match"`
}

// ---------- Dictionary ----------

// AddWordsRequest is the input to the AddWords RPC.
type AddWordsRequest struct {
	Words []string `json:"words"`
}

// AddWordsResponse reports how many of the submitted words were new.
type AddWordsResponse struct {
	Added int `json:"added"`
	Total int `json:"total"`
}

// StatsResponse describes the loaded dictionary.
type StatsResponse struct {
	Words         int    `json:"words"`
	Keys          int    `json:"keys"`
	Postings      int    `json:"postings"`
	MaxWordLength int    `json:"max_word_length"`
	Generation    uint64 `json:"generation"`
	Source        string `json:"source,omitempty"`
	LoadedAt      int64  `json:"loaded_at,omitempty"`
}
