package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordUploadClearsPriorArtifacts(t *testing.T) {
	sess := NewSession("s1", "u1", "Alice")

	sess.RecordUpload("first.pdf", "first document", "eng")
	sess.SetArtifact(KindPDFSummary, "old summary")
	sess.SetArtifact(KindPDFTopics, "old topics")
	sess.SetArtifact(KindPDFFlashcards, "old flashcards")
	sess.SetQuestion("old question")
	sess.SetArtifact(KindPDFQA, "old answer")

	sess.RecordUpload("second.pdf", "second document", "eng")

	snap := sess.Snapshot()
	assert.Equal(t, "second.pdf", snap.DocumentName)
	assert.Empty(t, snap.LastSummary)
	assert.Empty(t, snap.LastTopics)
	assert.Empty(t, snap.LastFlashcards)
	assert.Empty(t, snap.LastQuestion)
	assert.Empty(t, snap.LastAnswer)
	doc, ok := sess.Document()
	assert.True(t, ok)
	assert.Equal(t, "second document", doc)
}

func TestDocumentReportsPresenceWithText(t *testing.T) {
	sess := NewSession("s1", "u1", "Alice")

	doc, ok := sess.Document()
	assert.False(t, ok)
	assert.Empty(t, doc)

	sess.RecordUpload("doc.pdf", "text", "eng")
	doc, ok = sess.Document()
	assert.True(t, ok)
	assert.Equal(t, "text", doc)

	sess.ResetDocument()
	_, ok = sess.Document()
	assert.False(t, ok)
}

func TestResetDocumentClearsEverything(t *testing.T) {
	sess := NewSession("s1", "u1", "Alice")
	sess.RecordUpload("doc.pdf", "text", "eng")
	sess.SetArtifact(KindPDFSummary, "summary")

	sess.ResetDocument()

	assert.False(t, sess.HasDocument())
	assert.Empty(t, sess.Snapshot().LastSummary)
	// The log survives a document reset; it is append-only for the session.
	assert.Len(t, sess.History(), 1)
}

func TestAppendPreservesCallOrder(t *testing.T) {
	sess := NewSession("s1", "u1", "Alice")

	kinds := []string{KindChat, KindPDFUpload, KindPDFSummary, KindChat, KindPDFQA}
	for i, kind := range kinds {
		sess.Append(kind, map[string]string{"n": string(rune('a' + i))})
	}

	history := sess.History()
	require.Len(t, history, len(kinds))
	for i, rec := range history {
		assert.Equal(t, kinds[i], rec.Kind)
	}
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].CreatedAt.Before(history[i-1].CreatedAt))
	}
}

func TestExportHistoryEmptyLog(t *testing.T) {
	sess := NewSession("s1", "u1", "Alice")

	data, err := sess.ExportHistory()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestExportHistoryDeterministic(t *testing.T) {
	sess := NewSession("s1", "u1", "Alice")
	sess.Append(KindChat, map[string]string{
		"message": "hi",
		"reply":   "hello",
	})
	sess.Append(KindPDFQA, map[string]string{
		"question": "what?",
		"answer":   "that",
	})

	first, err := sess.ExportHistory()
	require.NoError(t, err)
	second, err := sess.ExportHistory()
	require.NoError(t, err)
	assert.Equal(t, first, second, "identical logs must export byte-identically")

	var records []InteractionRecord
	require.NoError(t, json.Unmarshal(first, &records))
	require.Len(t, records, 2)
	assert.Equal(t, KindChat, records[0].Kind)
	assert.Equal(t, KindPDFQA, records[1].Kind)
	assert.Equal(t, "hi", records[0].Payload["message"])
}

func TestBumpInputSeq(t *testing.T) {
	sess := NewSession("s1", "u1", "Alice")

	assert.Equal(t, 1, sess.BumpInputSeq())
	assert.Equal(t, 2, sess.BumpInputSeq())
	assert.Equal(t, 3, sess.BumpInputSeq())
}

func TestHistoryReturnsCopy(t *testing.T) {
	sess := NewSession("s1", "u1", "Alice")
	sess.Append(KindChat, map[string]string{"message": "hi"})

	history := sess.History()
	history[0].Kind = "mutated"

	assert.Equal(t, KindChat, sess.History()[0].Kind)
}
