package rag

import "time"

// DefaultTopK is the number of snippets retrieved when the caller does not say.
const DefaultTopK = 5

// Entry is one indexed unit of portfolio knowledge.
type Entry struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Match is a stored entry returned by a nearest-neighbour query.
// Lower Distance means more similar.
type Match struct {
	ID       int64   `json:"id"`
	Content  string  `json:"content"`
	Distance float64 `json:"distance"`
}

// ChatRequest is the payload of POST /chat/.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is returned by POST /chat/.
type ChatResponse struct {
	Response string `json:"response"`
}

// AddEntryRequest is the payload of POST /add-entry/.
type AddEntryRequest struct {
	Content string `json:"content"`
}

// AddEntryResponse is returned by POST /add-entry/.
type AddEntryResponse struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}

// AddFileResponse is returned by POST /add-file/.
type AddFileResponse struct {
	Status         string `json:"status"`
	ID             int64  `json:"id"`
	ContentPreview string `json:"content_preview"`
}

// Prompt is the assembled input for the generation model.
type Prompt struct {
	System string
	User   string
}
