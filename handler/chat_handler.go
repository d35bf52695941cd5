package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docchat-be/repository"
	"github.com/tieubaoca/docchat-be/service"
	"github.com/tieubaoca/docchat-be/types"
)

// ChatHandler serves conversation history and document summaries.
type ChatHandler struct {
	aiService    service.AIService
	documentRepo repository.DocumentRepo
}

func NewChatHandler(aiService service.AIService, documentRepo repository.DocumentRepo) *ChatHandler {
	return &ChatHandler{
		aiService:    aiService,
		documentRepo: documentRepo,
	}
}

func (h *ChatHandler) GetConversationHandler(c *gin.Context) {
	documentID := c.Param("documentId")
	if documentID == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Missing document id",
		})
		return
	}

	doc, err := h.documentRepo.Get(c.Request.Context(), documentID)
	if err != nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  false,
			Message: "Document not found",
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data: types.ConversationResponse{
			DocumentID:  doc.Slug,
			ChatHistory: doc.ChatHistory,
		},
	})
}

func (h *ChatHandler) GetSummaryHandler(c *gin.Context) {
	var req types.SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DocumentID == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}

	doc, err := h.documentRepo.Get(c.Request.Context(), req.DocumentID)
	if err != nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  false,
			Message: "Document not found",
		})
		return
	}

	summary := service.GenerateSummaryAndQuestions(c.Request.Context(), h.aiService, doc.ExtractedText)
	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   summary,
	})
}
