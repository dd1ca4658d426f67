package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-studypal-be/internal/constant"
	"ai-studypal-be/internal/dto"
	"ai-studypal-be/pkg/events"
	"ai-studypal-be/pkg/export"
	"ai-studypal-be/pkg/extract"
	"ai-studypal-be/pkg/langdetect"
	"ai-studypal-be/pkg/llm"
	"ai-studypal-be/pkg/store"
)

type IStudyService interface {
	Chat(ctx context.Context, sess *store.Session, message string) (*dto.ChatResponse, error)
	Upload(ctx context.Context, sess *store.Session, filename string, data []byte) (*dto.UploadResponse, error)
	Summarize(ctx context.Context, sess *store.Session) (*dto.ArtifactResponse, error)
	Topics(ctx context.Context, sess *store.Session) (*dto.ArtifactResponse, error)
	Flashcards(ctx context.Context, sess *store.Session) (*dto.ArtifactResponse, error)
	Ask(ctx context.Context, sess *store.Session, question string) (*dto.AskResponse, error)
	ExportHistory(sess *store.Session) ([]byte, error)
	ExportSummaryPDF(sess *store.Session) ([]byte, error)
	ResetDocument(sess *store.Session)
}

type studyService struct {
	llmProvider llm.LLMProvider
	extractor   extract.Extractor
	detector    langdetect.Detector
	publisher   IPublisherService
}

func NewStudyService(
	llmProvider llm.LLMProvider,
	extractor extract.Extractor,
	detector langdetect.Detector,
	publisher IPublisherService,
) IStudyService {
	return &studyService{
		llmProvider: llmProvider,
		extractor:   extractor,
		detector:    detector,
		publisher:   publisher,
	}
}

// dispatch forwards a prompt and converts any provider failure into a
// displayed error notice. The returned text is always ready to store: either
// trimmed model output or the full notice, never a mix.
func (s *studyService) dispatch(ctx context.Context, prompt string) (text string, failed bool) {
	reply, err := s.llmProvider.Generate(ctx, prompt)
	if err != nil {
		return constant.GenerationErrorPrefix + err.Error(), true
	}
	return strings.TrimSpace(reply), false
}

func (s *studyService) publish(ctx context.Context, sess *store.Session, kind string, failed bool) {
	if s.publisher == nil {
		return
	}
	now := time.Now()
	_ = s.publisher.Publish(ctx, events.BaseEvent{
		Type: constant.InteractionTopicName,
		Data: map[string]interface{}{
			"session_id": sess.ID,
			"user_id":    sess.UserID,
			"kind":       kind,
			"failed":     failed,
			"at":         now,
		},
		OccurredAt: now,
	})
}

func (s *studyService) Chat(ctx context.Context, sess *store.Session, message string) (*dto.ChatResponse, error) {
	// Chat needs no document; the message is the prompt, verbatim.
	reply, failed := s.dispatch(ctx, message)

	sess.SetArtifact(store.KindChat, reply)
	sess.Append(store.KindChat, map[string]string{
		"message": message,
		"reply":   reply,
	})
	seq := sess.CurrentInputSeq()
	if !failed {
		seq = sess.BumpInputSeq()
	}
	s.publish(ctx, sess, store.KindChat, failed)

	return &dto.ChatResponse{Reply: reply, InputSeq: seq}, nil
}

func (s *studyService) Upload(ctx context.Context, sess *store.Session, filename string, data []byte) (*dto.UploadResponse, error) {
	text, err := s.extractor.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("could not read document: %w", err)
	}

	// Detection failure only suppresses the language hint.
	lang, err := s.detector.Detect(text)
	if err != nil {
		lang = ""
	}

	sess.RecordUpload(filename, text, lang)
	s.publish(ctx, sess, store.KindPDFUpload, false)

	return &dto.UploadResponse{
		Filename:   filename,
		Language:   lang,
		Characters: len(text),
	}, nil
}

func (s *studyService) Summarize(ctx context.Context, sess *store.Session) (*dto.ArtifactResponse, error) {
	return s.documentArtifact(ctx, sess, store.KindPDFSummary, constant.SummarizePromptPrefix, "summary")
}

func (s *studyService) Topics(ctx context.Context, sess *store.Session) (*dto.ArtifactResponse, error) {
	return s.documentArtifact(ctx, sess, store.KindPDFTopics, constant.TopicsPromptPrefix, "topics")
}

func (s *studyService) Flashcards(ctx context.Context, sess *store.Session) (*dto.ArtifactResponse, error) {
	return s.documentArtifact(ctx, sess, store.KindPDFFlashcards, constant.FlashcardsPromptPrefix, "flashcards")
}

// documentArtifact runs one of the document-derived operations. The presence
// check happens before any prompt is built, so an empty document never
// reaches the provider.
func (s *studyService) documentArtifact(ctx context.Context, sess *store.Session, kind, promptPrefix, payloadKey string) (*dto.ArtifactResponse, error) {
	doc, ok := sess.Document()
	if !ok {
		return nil, ErrMissingDocument
	}

	text, failed := s.dispatch(ctx, promptPrefix+doc)
	sess.SetArtifact(kind, text)
	sess.Append(kind, map[string]string{payloadKey: text})
	s.publish(ctx, sess, kind, failed)

	return &dto.ArtifactResponse{Kind: kind, Text: text, IsError: failed}, nil
}

func (s *studyService) Ask(ctx context.Context, sess *store.Session, question string) (*dto.AskResponse, error) {
	doc, ok := sess.Document()
	if !ok {
		return nil, ErrMissingDocument
	}

	prompt := fmt.Sprintf(constant.AskPromptTemplate, doc, question)
	answer, failed := s.dispatch(ctx, prompt)

	sess.SetQuestion(question)
	sess.SetArtifact(store.KindPDFQA, answer)
	sess.Append(store.KindPDFQA, map[string]string{
		"question": question,
		"answer":   answer,
	})
	s.publish(ctx, sess, store.KindPDFQA, failed)

	return &dto.AskResponse{Question: question, Answer: answer, IsError: failed}, nil
}

func (s *studyService) ExportHistory(sess *store.Session) ([]byte, error) {
	return sess.ExportHistory()
}

func (s *studyService) ExportSummaryPDF(sess *store.Session) ([]byte, error) {
	summary := sess.Summary()
	if summary == "" {
		return nil, ErrNoSummary
	}
	title := sess.DocName()
	if title == "" {
		title = "Document summary"
	}
	return export.SummaryPDF(title, summary)
}

func (s *studyService) ResetDocument(sess *store.Session) {
	sess.ResetDocument()
}
