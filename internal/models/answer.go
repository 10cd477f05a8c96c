package models

// AskRequest is a question against the ingested corpus.
type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// AnswerContext is one retrieved piece of text supplied to generation,
// with its similarity score to the question.
type AnswerContext struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Answer is the response to a question: the generated text plus the
// contexts it was grounded on, in descending similarity order.
type Answer struct {
	Answer   string          `json:"answer"`
	Contexts []AnswerContext `json:"contexts"`
}
