package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docchat-be/agent"
	"github.com/tieubaoca/docchat-be/repository"
	"github.com/tieubaoca/docchat-be/types"
	"github.com/tieubaoca/docchat-be/utils"
)

const maxUploadSize = 50 << 20 // 50MB

// UploadHandler accepts a PDF, stores it, and runs the document-processing
// workflow before replying.
type UploadHandler struct {
	mainAgent    *agent.MainAgent
	documentRepo repository.DocumentRepo
	uploadDir    string
}

func NewUploadHandler(
	mainAgent *agent.MainAgent,
	documentRepo repository.DocumentRepo,
	uploadDir string,
) *UploadHandler {
	return &UploadHandler{
		mainAgent:    mainAgent,
		documentRepo: documentRepo,
		uploadDir:    uploadDir,
	}
}

func (h *UploadHandler) UploadDocumentHandler(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid file",
		})
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "File too large",
		})
		return
	}

	var req types.UploadRequest
	if metadata := c.Request.FormValue("metadata"); metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &req); err != nil {
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  false,
				Message: "Invalid metadata",
			})
			return
		}
	}
	if req.Title == "" {
		req.Title = header.Filename
	}
	slug := req.Slug
	if slug == "" {
		slug = utils.SlugFromFileName(header.Filename)
	}

	pdfBuffer, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: "Failed to read file",
		})
		return
	}

	if _, err := utils.SavePDF(slug, pdfBuffer, h.uploadDir); err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}

	now := time.Now().Unix()
	if err := h.documentRepo.Create(c.Request.Context(), &repository.Document{
		Slug:      slug,
		Title:     req.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}

	state := h.mainAgent.RunDocumentProcessing(c.Request.Context(), agent.DocumentProcessingInput{
		DocumentID: slug,
		PDFBuffer:  pdfBuffer,
	})
	if state.Status == types.StatusError {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: state.Data.Message,
			Data:    state.Data.Details,
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status:  true,
		Message: state.Data.Message,
		Data: types.UploadResponse{
			DocumentID:   slug,
			OriginalName: header.Filename,
			Message:      state.Data.Message,
			TokenCount:   state.Data.TokenCount,
			ChunksCount:  state.Data.ChunksCount,
			Embedded:     state.Data.EmbeddingsProcessed,
		},
	})
}
