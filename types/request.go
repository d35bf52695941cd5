package types

type QueryRequest struct {
	DocumentID   string `json:"document_id"`
	Query        string `json:"query"`
	UseWebSearch bool   `json:"use_web_search"`
}

type SummaryRequest struct {
	DocumentID string `json:"document_id"`
}
