package model

// ResultSource tags where a query result came from.
type ResultSource string

const (
	SourceLocal  ResultSource = "local"
	SourceRemote ResultSource = "remote"
)

// Result is the common shape every query operation returns, regardless of
// whether the local store or the remote fallback answered. Callers must not
// be able to tell the two apart by field presence, only by the Source tag.
type Result struct {
	Title      string       `json:"title"`
	Kind       Kind         `json:"kind"`
	Namespace  string       `json:"namespace,omitempty"`
	Summary    string       `json:"summary,omitempty"`
	SourcePage string       `json:"source_page,omitempty"`
	Score      float64      `json:"score,omitempty"`
	Source     ResultSource `json:"source"`
}

// RemoteRecord is the answer shape produced by the remote fallback. It
// carries the same logical fields as a local ApiRecord so the resolution
// engine can adapt it without field guessing.
type RemoteRecord struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Namespace   string `json:"namespace,omitempty"`
	Kind        Kind   `json:"kind"`
	URL         string `json:"url,omitempty"`
}
