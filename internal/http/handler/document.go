package handler

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"lexiapi/internal/model"
	"lexiapi/internal/service"
)

type analyzeRequest struct {
	FileID string `json:"fileId"`
}

type pasteTextRequest struct {
	Text string `json:"text"`
}

type chatRequest struct {
	Question string `json:"question"`
	FileID   string `json:"fileId"`
}

type uploadResponse struct {
	Message  string `json:"message"`
	FileID   string `json:"fileId"`
	Filename string `json:"filename"`
}

type documentView struct {
	ID       string  `json:"id"`
	Filename string  `json:"filename"`
	Summary  *string `json:"summary"`
	Risks    *string `json:"risks"`
}

type listResponse struct {
	Documents []documentView `json:"documents"`
}

// UploadDocument godoc
// @Summary      Upload a document
// @Description  Stores the file and creates an unanalyzed document record.
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Document to upload"
// @Success      201   {object}  uploadResponse
// @Failure      400   {object}  errorPayload
// @Failure      413   {object}  errorPayload
// @Failure      500   {object}  errorPayload
// @Router       /upload [post]
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "No file uploaded")
		}
		if strings.TrimSpace(fh.Filename) == "" {
			return writeError(c, fiber.StatusBadRequest, "EMPTY_FILENAME", "Empty filename")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := docSvc.Upload(c.UserContext(), f, fh.Filename, fh.Header.Get("Content-Type"), fh.Size)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(uploadResponse{
			Message:  service.UploadedMessage,
			FileID:   doc.ID,
			Filename: doc.Filename,
		})
	}
}

// AnalyzeDocument godoc
// @Summary      Analyze an uploaded document
// @Description  Extracts the text, stores a summary and risk note and returns them.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        request  body      analyzeRequest  true  "Document to analyze"
// @Success      200      {object}  model.Analysis
// @Failure      400      {object}  errorPayload
// @Failure      404      {object}  errorPayload
// @Failure      500      {object}  errorPayload
// @Router       /analyze [post]
func AnalyzeDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req analyzeRequest
		if err := decodeJSON(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_JSON", "request body must be valid JSON")
		}

		analysis, err := docSvc.Analyze(c.UserContext(), req.FileID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(analysis)
	}
}

// PasteText godoc
// @Summary      Summarize pasted text
// @Description  Summarizes free text without storing anything.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        request  body      pasteTextRequest  true  "Text to summarize"
// @Success      200      {object}  model.Analysis
// @Failure      400      {object}  errorPayload
// @Failure      500      {object}  errorPayload
// @Router       /paste-text [post]
func PasteText(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req pasteTextRequest
		if err := decodeJSON(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_JSON", "request body must be valid JSON")
		}

		analysis, err := docSvc.PasteText(c.UserContext(), req.Text)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(analysis)
	}
}

// Chat godoc
// @Summary      Ask a question about an analyzed document
// @Description  Generation failures return a low confidence fallback answer with status 200.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request  body      chatRequest  true  "Question"
// @Success      200      {object}  model.ChatAnswer
// @Failure      400      {object}  model.ChatAnswer
// @Failure      500      {object}  errorPayload
// @Router       /chat [post]
func Chat(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req chatRequest
		if err := decodeJSON(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_JSON", "request body must be valid JSON")
		}

		res, err := docSvc.Chat(c.UserContext(), req.Question, req.FileID)
		if err != nil {
			return writeServiceError(c, err)
		}
		if res.Outcome == service.ChatRejected {
			return c.Status(fiber.StatusBadRequest).JSON(res.Answer)
		}
		return c.JSON(res.Answer)
	}
}

// ListDocuments godoc
// @Summary      List documents
// @Tags         documents
// @Produce      json
// @Success      200  {object}  listResponse
// @Failure      500  {object}  errorPayload
// @Router       /documents [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := docSvc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(listResponse{Documents: toViews(docs)})
	}
}

func toViews(docs []model.Document) []documentView {
	out := make([]documentView, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentView{
			ID:       d.ID,
			Filename: d.Filename,
			Summary:  d.Summary,
			Risks:    d.Risks,
		})
	}
	return out
}

// decodeJSON accepts an empty body as an empty request so that field validation reports it.
func decodeJSON(c *fiber.Ctx, v any) error {
	body := c.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Join(fiber.ErrBadRequest, err)
	}
	return nil
}
