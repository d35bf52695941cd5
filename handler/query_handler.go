package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tieubaoca/docchat-be/agent"
	"github.com/tieubaoca/docchat-be/repository"
	"github.com/tieubaoca/docchat-be/types"
)

// QueryHandler streams query answers over a websocket. Each "chat" message
// runs one answer-query workflow; generated chunks are forwarded to the
// client as they arrive, followed by a "done" frame with the terminal result.
type QueryHandler struct {
	mainAgent    *agent.MainAgent
	documentRepo repository.DocumentRepo
	upgrader     websocket.Upgrader
}

func NewQueryHandler(mainAgent *agent.MainAgent, documentRepo repository.DocumentRepo) *QueryHandler {
	return &QueryHandler{
		mainAgent:    mainAgent,
		documentRepo: documentRepo,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512 * 1024)
	conn.SetReadDeadline(time.Now().Add(300 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(300 * time.Second))
		return nil
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			log.Println("Unmarshal error:", err)
			h.writeError(conn, "Invalid message format")
			continue
		}

		switch req.Type {
		case types.TypeWebsocketPing:
			if err := conn.WriteJSON(types.WebSocketResponse{
				Type: types.TypeWebsocketPong,
			}); err != nil {
				log.Println("Write error:", err)
			}

		case types.TypeWebsocketChat:
			payloadBytes, err := json.Marshal(req.Payload)
			if err != nil {
				h.writeError(conn, "Invalid payload")
				continue
			}
			var payload types.WebSocketQueryPayload
			if err := json.Unmarshal(payloadBytes, &payload); err != nil {
				h.writeError(conn, "Invalid payload")
				continue
			}
			h.runQuery(ctx, conn, payload)

		default:
			log.Println("Invalid message type:", req.Type)
		}
	}
}

func (h *QueryHandler) runQuery(ctx context.Context, conn *websocket.Conn, payload types.WebSocketQueryPayload) {
	doc, err := h.documentRepo.Get(ctx, payload.DocumentID)
	if err != nil {
		h.writeError(conn, "Document not found: "+payload.DocumentID)
		return
	}

	onChunk := func(chunk string) {
		if chunk == "" {
			return
		}
		if err := conn.WriteJSON(types.WebSocketResponse{
			Type:    types.TypeWebsocketChat,
			Payload: types.WebSocketChatResponse{Message: chunk},
		}); err != nil {
			log.Println("Write error:", err)
		}
	}

	state := h.mainAgent.RunAnswerQuery(ctx, agent.AnswerQueryInput{
		DocumentID:   payload.DocumentID,
		Query:        payload.Query,
		ChatHistory:  doc.ChatHistory,
		UseWebSearch: payload.UseWebSearch,
		OnChunk:      onChunk,
	})

	if state.Status == types.StatusError {
		h.writeError(conn, state.Data.Details)
		return
	}
	if err := conn.WriteJSON(types.WebSocketResponse{
		Type:    types.TypeWebsocketDone,
		Payload: types.WebSocketChatResponse{Message: state.Response},
	}); err != nil {
		log.Println("Write error:", err)
	}
}

func (h *QueryHandler) writeError(conn *websocket.Conn, message string) {
	if err := conn.WriteJSON(types.WebSocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: types.WebSocketChatResponse{Message: message},
	}); err != nil {
		log.Println("Write error:", err)
	}
}

func (h *QueryHandler) Health() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}
