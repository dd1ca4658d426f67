package store

import (
	"encoding/json"
	"sync"
	"time"
)

// Interaction kinds. One per user-visible operation.
const (
	KindPDFUpload     = "pdf_upload"
	KindChat          = "chat"
	KindPDFSummary    = "pdf_summary"
	KindPDFTopics     = "pdf_topics"
	KindPDFFlashcards = "pdf_flashcards"
	KindPDFQA         = "pdf_qa"
)

// InteractionRecord is a single entry of the session's append-only log.
// Records are never mutated after append; insertion order is chronological.
type InteractionRecord struct {
	Kind      string            `json:"kind"`
	Payload   map[string]string `json:"payload"`
	CreatedAt time.Time         `json:"created_at"`
}

// Session is the per-login in-memory state. One user session owns it
// exclusively; it is never persisted and dies with logout or TTL eviction.
type Session struct {
	mu sync.Mutex

	ID        string
	UserID    string
	UserName  string
	CreatedAt time.Time

	DocumentName string
	DocumentText string
	DocumentLang string

	LastSummary    string
	LastTopics     string
	LastFlashcards string
	LastQuestion   string
	LastAnswer     string

	// InputSeq strictly increases on every successful chat send. Clients use
	// it to force a fresh input widget identity.
	InputSeq int

	Interactions []InteractionRecord
}

// Snapshot is a copy of the session safe to serialize and hand to clients.
type Snapshot struct {
	ID             string    `json:"id"`
	UserName       string    `json:"user_name"`
	CreatedAt      time.Time `json:"created_at"`
	DocumentName   string    `json:"document_name"`
	DocumentLang   string    `json:"document_lang"`
	HasDocument    bool      `json:"has_document"`
	LastSummary    string    `json:"last_summary"`
	LastTopics     string    `json:"last_topics"`
	LastFlashcards string    `json:"last_flashcards"`
	LastQuestion   string    `json:"last_question"`
	LastAnswer     string    `json:"last_answer"`
	InputSeq       int       `json:"input_seq"`
	Interactions   int       `json:"interactions"`
}

func NewSession(id, userID, userName string) *Session {
	return &Session{
		ID:        id,
		UserID:    userID,
		UserName:  userName,
		CreatedAt: time.Now(),
	}
}

// ResetDocument clears the document text and every derived artifact. A
// summary or answer for a previous document must never survive a new upload.
func (s *Session) ResetDocument() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetDocumentLocked()
}

func (s *Session) resetDocumentLocked() {
	s.DocumentName = ""
	s.DocumentText = ""
	s.DocumentLang = ""
	s.LastSummary = ""
	s.LastTopics = ""
	s.LastFlashcards = ""
	s.LastQuestion = ""
	s.LastAnswer = ""
}

// RecordUpload installs freshly extracted document text, clearing any prior
// document state first, and logs the upload.
func (s *Session) RecordUpload(filename, text, lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetDocumentLocked()
	s.DocumentName = filename
	s.DocumentText = text
	s.DocumentLang = lang
	s.appendLocked(KindPDFUpload, map[string]string{
		"filename": filename,
		"language": lang,
	})
}

// HasDocument reports whether a document is loaded. Document-dependent
// operations must be gated on this before any prompt is dispatched.
func (s *Session) HasDocument() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.DocumentText != ""
}

// Document returns the loaded text and whether one is present, as one locked
// read. Callers gate and read in a single step so a concurrent reset cannot
// slip in between and hand a gated operation an empty document.
func (s *Session) Document() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.DocumentText, s.DocumentText != ""
}

// SetArtifact stores the text result for the given kind. The value replaces
// the prior artifact in full, whether it is model output or an error notice.
func (s *Session) SetArtifact(kind, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case KindPDFSummary:
		s.LastSummary = value
	case KindPDFTopics:
		s.LastTopics = value
	case KindPDFFlashcards:
		s.LastFlashcards = value
	case KindPDFQA:
		s.LastAnswer = value
	case KindChat:
		s.LastAnswer = value
	}
}

func (s *Session) SetQuestion(question string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastQuestion = question
}

// BumpInputSeq increments and returns the input sequence counter.
func (s *Session) BumpInputSeq() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InputSeq++
	return s.InputSeq
}

// CurrentInputSeq returns the counter without advancing it.
func (s *Session) CurrentInputSeq() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.InputSeq
}

// Append adds a timestamped record to the interaction log.
func (s *Session) Append(kind string, payload map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(kind, payload)
}

func (s *Session) appendLocked(kind string, payload map[string]string) {
	s.Interactions = append(s.Interactions, InteractionRecord{
		Kind:      kind,
		Payload:   payload,
		CreatedAt: time.Now(),
	})
}

// History returns a copy of the interaction log in append order.
func (s *Session) History() []InteractionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]InteractionRecord, len(s.Interactions))
	copy(out, s.Interactions)
	return out
}

// ExportHistory serializes the full log as an indented JSON array. Payload
// keys marshal in sorted order, so identical logs export byte-identically.
func (s *Session) ExportHistory() ([]byte, error) {
	records := s.History()
	if len(records) == 0 {
		return []byte("[]"), nil
	}
	return json.MarshalIndent(records, "", "  ")
}

// Snapshot returns a client-safe copy of the current state. The raw document
// text stays server-side.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:             s.ID,
		UserName:       s.UserName,
		CreatedAt:      s.CreatedAt,
		DocumentName:   s.DocumentName,
		DocumentLang:   s.DocumentLang,
		HasDocument:    s.DocumentText != "",
		LastSummary:    s.LastSummary,
		LastTopics:     s.LastTopics,
		LastFlashcards: s.LastFlashcards,
		LastQuestion:   s.LastQuestion,
		LastAnswer:     s.LastAnswer,
		InputSeq:       s.InputSeq,
		Interactions:   len(s.Interactions),
	}
}

// Summary returns the last summary text, empty when none was generated yet.
func (s *Session) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastSummary
}

func (s *Session) DocName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.DocumentName
}
