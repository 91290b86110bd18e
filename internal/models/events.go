package models

// SegmentsIndexed is published after a file's segments are upserted into
// the vector store.
type SegmentsIndexed struct {
	EventType string `json:"eventType"`
	Session   string `json:"session"`
	File      string `json:"file"`
	Namespace string `json:"namespace"`
	Segments  int    `json:"segments"`
	Indexed   int    `json:"indexed"`
	Timestamp int64  `json:"timestamp"`
}

// SearchPerformed is published after a retrieval query completes.
type SearchPerformed struct {
	EventType string  `json:"eventType"`
	Query     string  `json:"query"`
	Namespace string  `json:"namespace"`
	Session   string  `json:"session,omitempty"`
	TopK      int     `json:"topK"`
	Threshold float64 `json:"threshold"`
	Returned  int     `json:"returned"`
	Kept      int     `json:"kept"`
	Timestamp int64   `json:"timestamp"`
}
