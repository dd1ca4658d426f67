package constant

// Prompt templates. The document text is appended verbatim; any change here
// changes what the model sees, so tests assert against these exact strings.
const (
	SummarizePromptPrefix  = "Summarize this:\n"
	TopicsPromptPrefix     = "List key topics from this:\n"
	FlashcardsPromptPrefix = "Create flashcards from this:\n"

	// AskPromptTemplate formats (document, question).
	AskPromptTemplate = "Text:\n%s\n\nQuestion: %s"
)

// GenerationErrorPrefix marks artifacts that hold a failure notice instead of
// model output.
const GenerationErrorPrefix = "❌ Error: "

// InteractionTopicName is the in-process bus topic for completed operations.
const InteractionTopicName = "STUDY_INTERACTION_COMPLETED"
