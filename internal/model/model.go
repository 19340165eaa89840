package model

// Confidence describes how much a chat answer can be relied upon.
// It is a two-valued indicator, not a probability.
type Confidence string

const (
	ConfidenceHigh Confidence = "High"
	ConfidenceLow  Confidence = "Low"
)

// Analysis is the derived summary and risk note for a piece of text.
type Analysis struct {
	Summary string `json:"summary"`
	Risks   string `json:"risks"`
}

// ChatAnswer is the answer returned to a question about a document.
type ChatAnswer struct {
	AnswerText string     `json:"answerText"`
	Confidence Confidence `json:"confidence"`
}
