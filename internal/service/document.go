package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"lexiapi/internal/extractor"
	"lexiapi/internal/generator"
	"lexiapi/internal/model"
	"lexiapi/internal/repository"
	"lexiapi/internal/storage"
)

const (
	// SummaryPrefixLength is the number of characters of extracted text kept as the summary.
	SummaryPrefixLength = 500
	TruncationMarker    = "..."

	AnalyzeRisksPlaceholder   = "Potential risks detected from the document."
	PasteTextRisksPlaceholder = "Potential risks extracted via AI"

	SummarizePromptPrefix = "Summarize this text in short: "
	MaxOutputTokens       = 200

	UploadedMessage = "File uploaded successfully"
	FallbackAnswer  = "I don't know the exact answer."

	MsgQuestionRequired = "Please ask a question."
	MsgFileIDRequired   = "Please provide a file ID."
	MsgAnalyzeFirst     = "Please analyze a document first."

	OpExtraction    = "Document AI processing"
	OpSummarization = "Summarization"

	defaultMimeType = "application/pdf"
	octetStream     = "application/octet-stream"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("document not found")
	ErrReaderNil      = errors.New("reader is nil")
)

// ExternalServiceError reports a failed extraction or generation call.
// Error() carries the collaborator's message verbatim.
type ExternalServiceError struct {
	Operation string
	Err       error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

type ChatOutcome string

const (
	ChatAnswered ChatOutcome = "answered"
	// ChatEmpty means the generator succeeded but returned no text.
	ChatEmpty ChatOutcome = "empty"
	// ChatDegraded means the generator failed; the fallback answer is returned instead.
	ChatDegraded ChatOutcome = "degraded"
	ChatRejected ChatOutcome = "rejected"
)

// ChatResult is the outcome of a chat request. Cause holds the underlying
// error for degraded and rejected results.
type ChatResult struct {
	Outcome ChatOutcome
	Answer  model.ChatAnswer
	Cause   error
}

// DocumentService defines the document lifecycle: uploaded, analyzed, queryable.
type DocumentService interface {
	// Upload stores the content under "<id>_<filename>" and creates its record.
	// The blob is removed again if the record cannot be saved.
	Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Document, error)

	// Analyze extracts the document text and persists the summary and risk note.
	Analyze(ctx context.Context, id string) (*model.Analysis, error)

	// PasteText summarizes free text. Nothing is persisted.
	PasteText(ctx context.Context, text string) (*model.Analysis, error)

	// Chat answers a question about an analyzed document. Generator failures
	// produce a degraded result, not an error; only record store failures are returned.
	Chat(ctx context.Context, question, fileID string) (*ChatResult, error)

	// List returns every document record.
	List(ctx context.Context) ([]model.Document, error)
}

type documentService struct {
	store     storage.Storage
	repo      repository.DocumentRepository
	extractor extractor.Extractor
	generator generator.Generator
	log       *slog.Logger
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(
	store storage.Storage,
	repo repository.DocumentRepository,
	ext extractor.Extractor,
	gen generator.Generator,
	log *slog.Logger,
) DocumentService {
	if log == nil {
		log = slog.Default()
	}
	return &documentService{store: store, repo: repo, extractor: ext, generator: gen, log: log}
}

func (s *documentService) Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	name := sanitizeFilename(originalFilename)
	if name == "" {
		return nil, fmt.Errorf("%w: filename is empty", ErrInvalidRequest)
	}

	id := uuid.New().String()
	filename := id + "_" + name
	contentType = resolveContentType(contentType, name)

	objInfo, err := s.store.Put(ctx, filename, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			storage.MetaOriginalFilename: name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:          id,
		Filename:    filename,
		ContentType: contentType,
		Size:        objInfo.Size,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, filename); delErr != nil {
			s.log.Error("upload_rollback_failed",
				slog.String("filename", filename),
				slog.Any("error", delErr),
			)
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *documentService) Analyze(ctx context.Context, id string) (*model.Analysis, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	content, err := storage.ReadAll(ctx, s.store, doc.Filename)
	if err != nil {
		return nil, &ExternalServiceError{Operation: OpExtraction, Err: err}
	}

	text, err := s.extractor.Extract(ctx, content, mimeHint(doc.ContentType))
	if err != nil {
		return nil, &ExternalServiceError{Operation: OpExtraction, Err: err}
	}

	analysis := &model.Analysis{
		Summary: summarize(text),
		Risks:   AnalyzeRisksPlaceholder,
	}
	if err := s.repo.UpdateAnalysis(ctx, doc.ID, analysis.Summary, analysis.Risks); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("save analysis: %w", err)
	}
	return analysis, nil
}

func (s *documentService) PasteText(ctx context.Context, text string) (*model.Analysis, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidRequest)
	}

	summary, err := s.generator.Generate(ctx, SummarizePromptPrefix+text, MaxOutputTokens)
	if err != nil {
		return nil, &ExternalServiceError{Operation: OpSummarization, Err: err}
	}
	return &model.Analysis{Summary: summary, Risks: PasteTextRisksPlaceholder}, nil
}

func (s *documentService) Chat(ctx context.Context, question, fileID string) (*ChatResult, error) {
	question = strings.ToLower(question)
	fileID = strings.TrimSpace(fileID)

	if question == "" {
		return rejected(MsgQuestionRequired), nil
	}
	if fileID == "" {
		return rejected(MsgFileIDRequired), nil
	}

	doc, err := s.find(ctx, fileID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return rejected(MsgAnalyzeFirst), nil
		}
		return nil, err
	}
	if !doc.Analyzed() {
		return rejected(MsgAnalyzeFirst), nil
	}

	answer, err := s.generator.Generate(ctx, chatPrompt(*doc.Summary, question), MaxOutputTokens)
	switch {
	case err != nil:
		s.log.Warn("chat_answer_degraded",
			slog.String("document_id", doc.ID),
			slog.Any("error", err),
		)
		return &ChatResult{
			Outcome: ChatDegraded,
			Answer:  model.ChatAnswer{AnswerText: FallbackAnswer, Confidence: model.ConfidenceLow},
			Cause:   err,
		}, nil
	case strings.TrimSpace(answer) == "":
		return &ChatResult{
			Outcome: ChatEmpty,
			Answer:  model.ChatAnswer{AnswerText: FallbackAnswer, Confidence: model.ConfidenceLow},
		}, nil
	default:
		return &ChatResult{
			Outcome: ChatAnswered,
			Answer:  model.ChatAnswer{AnswerText: strings.TrimSpace(answer), Confidence: model.ConfidenceHigh},
		}, nil
	}
}

func (s *documentService) List(ctx context.Context) ([]model.Document, error) {
	docs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []model.Document{}
	}
	return docs, nil
}

// find loads a record by the canonical form of id, mapping malformed and
// unknown ids to ErrNotFound.
func (s *documentService) find(ctx context.Context, id string) (*model.Document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: fileId is required", ErrInvalidRequest)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	doc, err := s.repo.FindByID(ctx, parsed.String())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func rejected(msg string) *ChatResult {
	return &ChatResult{
		Outcome: ChatRejected,
		Answer:  model.ChatAnswer{AnswerText: msg, Confidence: model.ConfidenceLow},
		Cause:   fmt.Errorf("%w: %s", ErrInvalidRequest, msg),
	}
}

func chatPrompt(summary, question string) string {
	return "Document Text:\n" + summary + "\n\nQuestion: " + question + "\nAnswer:"
}

// summarize keeps the first SummaryPrefixLength characters and always appends the marker.
func summarize(text string) string {
	runes := []rune(text)
	if len(runes) > SummaryPrefixLength {
		runes = runes[:SummaryPrefixLength]
	}
	return string(runes) + TruncationMarker
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" {
		return ""
	}
	base := strings.TrimSpace(path.Base(name))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return strings.ReplaceAll(base, "\x00", "")
}

func resolveContentType(contentType, filename string) string {
	ct := strings.TrimSpace(contentType)
	if ct != "" && ct != octetStream {
		return ct
	}
	if byExt := mime.TypeByExtension(path.Ext(filename)); byExt != "" {
		return byExt
	}
	if ct == "" {
		return octetStream
	}
	return ct
}

func mimeHint(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || mt == "" || mt == octetStream {
		return defaultMimeType
	}
	return mt
}
