package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"ragchat/internal/ai"
	"ragchat/internal/vectorstore/qdrant"
)

const answerSystemPrompt = "You are a helpful assistant. Answer the question using only the provided context. " +
	"If the context does not contain enough information, say so. Do not make up facts."

// Searcher is the similarity-search slice of the Qdrant client.
type Searcher interface {
	Search(ctx context.Context, vector []float32, topK int, scoreThreshold float64) ([]qdrant.ScoredPoint, error)
}

// Completer produces a chat completion for an assembled prompt.
type Completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// RetrievalPolicy controls how much context feeds the generator.
type RetrievalPolicy struct {
	TopK           int
	ScoreThreshold float64
}

type RAGService struct {
	searcher  Searcher
	embedder  Embedder
	completer Completer
	policy    RetrievalPolicy
	logger    *zap.Logger
}

func NewRAGService(searcher Searcher, embedder Embedder, completer Completer, policy RetrievalPolicy, logger *zap.Logger) *RAGService {
	if policy.TopK <= 0 {
		policy.TopK = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RAGService{
		searcher:  searcher,
		embedder:  embedder,
		completer: completer,
		policy:    policy,
		logger:    logger,
	}
}

// GenerateAnswer embeds the question, retrieves the top-k chunks and asks the
// generation provider for a grounded answer.
func (s *RAGService) GenerateAnswer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrInvalidInput
	}

	queryVector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return "", asDependencyFailure(err)
	}

	hits, err := s.searcher.Search(ctx, queryVector, s.policy.TopK, s.policy.ScoreThreshold)
	if err != nil {
		return "", asDependencyFailure(err)
	}

	contextBlock := formatContext(hits)
	messages := []ai.ChatMessage{
		{Role: "system", Content: answerSystemPrompt},
		{Role: "user", Content: "Context:\n" + contextBlock + "\n\nQuestion: " + question + "\n\nAnswer:"},
	}

	answer, err := s.completer.Complete(ctx, messages)
	if err != nil {
		return "", asDependencyFailure(err)
	}
	answer = strings.TrimSpace(answer)

	s.logger.Info("answer generated",
		zap.Int("context_chunks", len(hits)),
		zap.Int("answer_len", len(answer)),
	)
	return answer, nil
}

func formatContext(hits []qdrant.ScoredPoint) string {
	if len(hits) == 0 {
		return "(no documents indexed)"
	}
	parts := make([]string, 0, len(hits))
	for _, hit := range hits {
		if text, ok := hit.Payload[payloadText].(string); ok && text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "(no documents indexed)"
	}
	return strings.Join(parts, "\n---\n")
}
