package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRAGService(index *fakeIndex) (*RAGService, *fakeEmbedder, *fakeCompleter) {
	embedder := &fakeEmbedder{}
	completer := &fakeCompleter{}
	svc := NewRAGService(index, embedder, completer, RetrievalPolicy{TopK: 2, ScoreThreshold: 0.1}, nil)
	return svc, embedder, completer
}

func TestGenerateAnswerUsesRetrievedContext(t *testing.T) {
	index := &fakeIndex{}
	docSvc := NewDocumentService(index, &fakeEmbedder{}, 64, 8, nil)
	_, err := docSvc.Add(context.Background(), "the capital of France is Paris", nil)
	require.NoError(t, err)

	svc, _, completer := newTestRAGService(index)
	answer, err := svc.GenerateAnswer(context.Background(), "What is the capital of France?")
	require.NoError(t, err)
	require.Equal(t, "stub answer", answer)

	require.Len(t, completer.prompts, 1)
	require.Contains(t, completer.prompts[0], "the capital of France is Paris")
	require.Contains(t, completer.prompts[0], "What is the capital of France?")
	require.Equal(t, 2, index.lastSearch.topK)
	require.InDelta(t, 0.1, index.lastSearch.threshold, 1e-9)
}

func TestGenerateAnswerEmptyQuestion(t *testing.T) {
	svc, embedder, _ := newTestRAGService(&fakeIndex{})

	_, err := svc.GenerateAnswer(context.Background(), "   ")
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Zero(t, embedder.calls)
}

func TestGenerateAnswerNoDocuments(t *testing.T) {
	svc, _, completer := newTestRAGService(&fakeIndex{})

	_, err := svc.GenerateAnswer(context.Background(), "anything there?")
	require.NoError(t, err)
	require.Len(t, completer.prompts, 1)
	require.Contains(t, completer.prompts[0], "(no documents indexed)")
}

func TestGenerateAnswerProviderFailure(t *testing.T) {
	svc, _, completer := newTestRAGService(&fakeIndex{})
	completer.err = errors.New("llm exploded")

	_, err := svc.GenerateAnswer(context.Background(), "hello?")
	require.ErrorIs(t, err, ErrDependency)
}

func TestGenerateAnswerTimeout(t *testing.T) {
	svc, embedder, _ := newTestRAGService(&fakeIndex{})
	embedder.err = context.DeadlineExceeded

	_, err := svc.GenerateAnswer(context.Background(), "hello?")
	require.ErrorIs(t, err, ErrTimeout)
}

func TestGenerateAnswerSearchFailure(t *testing.T) {
	index := &fakeIndex{searchErr: errors.New("qdrant down")}
	svc, _, _ := newTestRAGService(index)

	_, err := svc.GenerateAnswer(context.Background(), "hello?")
	require.ErrorIs(t, err, ErrDependency)
}
