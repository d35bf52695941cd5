package types

// WorkflowStatus tracks the lifecycle of a single workflow run. Only
// StatusCompleted and StatusError are terminal.
type WorkflowStatus string

const (
	StatusIdle       WorkflowStatus = "idle"
	StatusProcessing WorkflowStatus = "processing"
	StatusCompleted  WorkflowStatus = "completed"
	StatusError      WorkflowStatus = "error"
)

const (
	ActionProcessDocument = "process_document"
	ActionAnswerQuery     = "answer_query"
)

// Planner action names returned by the planning LLM.
const (
	PlannerActionQueryDocument       = "query_document"
	PlannerActionRespondFromContext  = "generate_response_from_context"
	PlannerActionRespondFromPureText = "generate_response_pure_text"
)

// PlannerDecision is the structured action chosen by the planner for a query
// turn. It lives in StateMetadata only for the duration of the run.
type PlannerDecision struct {
	Thought string        `json:"thought"`
	Action  PlannerAction `json:"action"`
}

type PlannerAction struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

// RetrievedDocument is one context item produced by the retrieval node.
type RetrievedDocument struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Score    float64           `json:"score,omitempty"`
}

// StateMetadata carries routing and control data for the current run. Nodes
// read the fields relevant to them and may set new ones; they must not clear
// fields that downstream nodes still need.
type StateMetadata struct {
	Action              string
	DocumentID          string
	PDFBuffer           []byte
	OnChunk             StreamHandler
	UseWebSearch        bool
	EmbeddingsGenerated bool
	PlannerDecision     *PlannerDecision
	ProcessingStep      string
	TokenCount          int
	TotalPages          int
}

// StateData carries payload results for the caller, as opposed to
// StateMetadata which is routing info for the engine.
type StateData struct {
	FullDocumentText       string
	RetrievalStatusMessage string
	Context                string
	Message                string
	Details                string
	Text                   string
	TokenCount             int
	ChunksCount            int
	DocumentID             string
	EmbeddingsProcessed    bool
	LLMToolUsed            string
}

// WorkflowState is the single record threaded through every node of a run.
// Nodes receive it by value and return the modified copy, so a node that only
// touches one field never clobbers what an earlier node set.
type WorkflowState struct {
	Status      WorkflowStatus
	CurrentNode string
	NextNode    string
	InputQuery  string
	Response    string
	ChatHistory []Message
	Documents   []RetrievedDocument
	Metadata    StateMetadata
	Data        StateData
	Error       string
}
