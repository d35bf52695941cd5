package types

type DataResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

type UploadResponse struct {
	DocumentID   string `json:"document_id"`
	OriginalName string `json:"original_name,omitempty"`
	Message      string `json:"message"`
	TokenCount   int    `json:"token_count"`
	ChunksCount  int    `json:"chunks_count"`
	Embedded     bool   `json:"embedded"`
}

type ConversationResponse struct {
	DocumentID  string    `json:"document_id"`
	ChatHistory []Message `json:"chat_history"`
}

type SummaryResponse struct {
	Summary   string   `json:"summary"`
	Questions []string `json:"questions"`
}

// WebSearchResult is a single hit returned by the web-search tool.
type WebSearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// WebSearchAnswer bundles a condensed answer with the raw results.
type WebSearchAnswer struct {
	Answer  string            `json:"answer"`
	Results []WebSearchResult `json:"results"`
}
