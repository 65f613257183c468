package models

// Sender identifies who authored a turn in the conversation.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one turn in a chat view. Order is its zero-based position in the list.
type Message struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
	Order  int    `json:"order"`
}

// ChatMessage is a history entry as reported by the question-answering backend.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// QueryRequest is the body posted to the backend's query endpoint.
type QueryRequest struct {
	Question string `json:"question"`
}

// APIResponse is what both backend endpoints reply with.
// History is decoded but not used by the views.
type APIResponse struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history,omitempty"`
}
