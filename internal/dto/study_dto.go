package dto

import "time"

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

type ChatResponse struct {
	Reply    string `json:"reply"`
	InputSeq int    `json:"input_seq"`
}

type UploadResponse struct {
	Filename   string `json:"filename"`
	Language   string `json:"language,omitempty"`
	Characters int    `json:"characters"`
}

// ArtifactResponse carries a generated artifact (summary, topics or
// flashcards). Text may be an error notice; IsError tells the client to
// render it as one.
type ArtifactResponse struct {
	Kind    string `json:"kind"`
	Text    string `json:"text"`
	IsError bool   `json:"is_error"`
}

type AskRequest struct {
	Question string `json:"question" validate:"required"`
}

type AskResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	IsError  bool   `json:"is_error"`
}

// InteractionEventMessage is the bus payload published after every completed
// operation.
type InteractionEventMessage struct {
	SessionId string    `json:"session_id"`
	UserId    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Failed    bool      `json:"failed"`
	At        time.Time `json:"at"`
}
