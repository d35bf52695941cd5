package service

import (
	"encoding/json"
	"fmt"

	"github.com/tieubaoca/docchat-be/types"
)

const PlannerSystemPrompt = `You are a planning assistant for a document question-answering system.
Given the user's question and the document's processing state, choose exactly one action:
- "query_document": search the document's vector index for relevant passages. Only valid when embeddings exist and retrieval has not already been attempted this turn.
- "generate_response_from_context": answer using context already retrieved this turn.
- "generate_response_pure_text": answer from the document's full extracted text (used when no embeddings exist or retrieval found nothing).
Respond with JSON only, in the form:
{"thought": "<why>", "action": {"name": "<action>", "args": {}}}`

// PlannerPrompt renders the user prompt for the planning completion.
func PlannerPrompt(query string, embeddingsGenerated bool, retrievalStatus string, fullTextAvailable bool, history []types.Message, documentID string) string {
	if retrievalStatus == "" {
		retrievalStatus = "Not yet performed"
	}
	historyJSON, _ := json.Marshal(history)
	return fmt.Sprintf(`Question: %s
Document ID: %s
Embeddings generated: %s
Retrieval status: %s
Full document text available: %s
Chat history: %s`,
		query,
		documentID,
		yesNo(embeddingsGenerated),
		retrievalStatus,
		yesNo(fullTextAvailable),
		string(historyJSON),
	)
}

const contextualSystemPromptFmt = `You are a helpful assistant answering questions about a document.
Answer the question using the provided context. If the context does not contain
the answer, say so instead of inventing one.

CONTEXT:
%s`

// ContextualMessages builds the message list for context-grounded generation.
func ContextualMessages(query, context string, history []types.Message) []types.Message {
	messages := make([]types.Message, 0, len(history)+2)
	messages = append(messages, types.Message{
		Role:    types.RoleSystem,
		Content: fmt.Sprintf(contextualSystemPromptFmt, context),
	})
	messages = append(messages, history...)
	messages = append(messages, types.Message{Role: types.RoleUser, Content: query})
	return messages
}

const pureTextSystemPromptFmt = `You are a helpful assistant answering questions about a document.
Answer the question using only the document text below.

DOCUMENT TEXT:
%s`

// PureTextMessages builds the message list for full-text generation.
func PureTextMessages(query, text string, history []types.Message) []types.Message {
	messages := make([]types.Message, 0, len(history)+2)
	messages = append(messages, types.Message{
		Role:    types.RoleSystem,
		Content: fmt.Sprintf(pureTextSystemPromptFmt, text),
	})
	messages = append(messages, history...)
	messages = append(messages, types.Message{Role: types.RoleUser, Content: query})
	return messages
}

const summarySystemPrompt = `You summarize documents. Given document text, respond with JSON only:
{"summary": "<3-5 sentence summary>", "questions": ["<q1>", "<q2>", "<q3>"]}
The questions must be answerable from the document.`

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
