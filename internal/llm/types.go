package llm

// Message is a single message in a chat conversation, in the role and
// content shape the OpenAI-compatible chat API expects.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams holds per-request knobs for answer generation.
type ChatParams struct {
	// Model overrides the client's default model when non-empty.
	Model string

	// MaxTokens caps the generated answer length. 0 means no cap.
	MaxTokens int

	// Temperature controls output randomness. Grounded answering runs
	// low (0.2) so the model sticks to the retrieved context.
	Temperature float32
}
