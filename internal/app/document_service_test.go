package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDocumentService() (*DocumentService, *fakeIndex, *fakeEmbedder) {
	index := &fakeIndex{}
	embedder := &fakeEmbedder{}
	svc := NewDocumentService(index, embedder, 64, 8, nil)
	return svc, index, embedder
}

func TestAddRoundTrip(t *testing.T) {
	svc, _, _ := newTestDocumentService()
	ctx := context.Background()

	result, err := svc.Add(ctx, "hello world", map[string]string{"source": "test"})
	require.NoError(t, err)
	require.Equal(t, 1, result.DocumentsCount)
	require.NotEmpty(t, result.DocumentID)

	docs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, result.DocumentID, docs[0].ID)
	require.Equal(t, "hello world", docs[0].Content)
	require.Equal(t, "test", docs[0].Metadata["source"])
	require.NotEmpty(t, docs[0].CreatedAt)

	doc, err := svc.Get(ctx, result.DocumentID)
	require.NoError(t, err)
	require.Equal(t, "hello world", doc.Content)
}

func TestAddLongContentChunks(t *testing.T) {
	svc, index, _ := newTestDocumentService()
	ctx := context.Background()

	content := strings.Repeat("0123456789", 20) // 200 runes, chunk size 64
	result, err := svc.Add(ctx, content, nil)
	require.NoError(t, err)
	require.Greater(t, result.DocumentsCount, 1)
	require.Len(t, index.points, result.DocumentsCount)

	// full content survives on the first chunk
	doc, err := svc.Get(ctx, result.DocumentID)
	require.NoError(t, err)
	require.Equal(t, content, doc.Content)
}

func TestAddRejectsBlankContent(t *testing.T) {
	svc, index, _ := newTestDocumentService()

	_, err := svc.Add(context.Background(), "   \n ", nil)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Empty(t, index.points)
}

func TestAddEmbedderFailure(t *testing.T) {
	svc, index, embedder := newTestDocumentService()
	embedder.err = errors.New("provider down")

	_, err := svc.Add(context.Background(), "hello", nil)
	require.ErrorIs(t, err, ErrDependency)
	require.Empty(t, index.points)
}

func TestAddFileUnsupportedType(t *testing.T) {
	svc, index, _ := newTestDocumentService()

	_, err := svc.AddFile(context.Background(), "evil.exe", strings.NewReader("payload"), nil)
	require.ErrorIs(t, err, ErrUnsupportedFile)
	require.Empty(t, index.points)
}

func TestAddFileMarkdown(t *testing.T) {
	svc, _, _ := newTestDocumentService()
	ctx := context.Background()

	result, err := svc.AddFile(ctx, "notes.md", strings.NewReader("# Title\n\nsome text"), nil)
	require.NoError(t, err)

	doc, err := svc.Get(ctx, result.DocumentID)
	require.NoError(t, err)
	require.Contains(t, doc.Content, "some text")
	require.Equal(t, "notes.md", doc.Metadata["filename"])
}

func TestAssembleDocumentsJSONDecodedMetadata(t *testing.T) {
	// Payloads read back from the vector store carry metadata as
	// map[string]any after JSON decoding.
	docs := assembleDocuments([]map[string]any{
		{
			payloadDocumentID: "doc-1",
			payloadCreatedAt:  "2026-09-01T00:00:00Z",
			payloadChunkIndex: float64(0),
			payloadText:       "hello",
			payloadMetadata:   map[string]any{"source": "api", "count": 3},
		},
	})
	require.Len(t, docs, 1)
	require.Equal(t, "api", docs[0].Metadata["source"])
	_, hasCount := docs[0].Metadata["count"]
	require.False(t, hasCount, "non-string metadata values are skipped")
}

func TestAddSkipsBlankChunks(t *testing.T) {
	svc, index, _ := newTestDocumentService()
	ctx := context.Background()

	// 200 interior spaces with chunk size 64 yields all-blank chunks.
	content := "start" + strings.Repeat(" ", 200) + "end"
	result, err := svc.Add(ctx, content, nil)
	require.NoError(t, err)
	require.Len(t, index.points, result.DocumentsCount)
	for _, p := range index.points {
		text, ok := p.Payload[payloadText].(string)
		require.True(t, ok)
		require.NotEmpty(t, strings.TrimSpace(text))
	}

	doc, err := svc.Get(ctx, result.DocumentID)
	require.NoError(t, err)
	require.Equal(t, content, doc.Content)
}

func TestListOrderIsCreationOrder(t *testing.T) {
	svc, _, _ := newTestDocumentService()
	ctx := context.Background()

	first, err := svc.Add(ctx, "first document", nil)
	require.NoError(t, err)
	second, err := svc.Add(ctx, "second document", nil)
	require.NoError(t, err)

	docs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	ids := []string{docs[0].ID, docs[1].ID}
	require.Contains(t, ids, first.DocumentID)
	require.Contains(t, ids, second.DocumentID)
}

func TestGetUnknownID(t *testing.T) {
	svc, _, _ := newTestDocumentService()

	_, err := svc.Get(context.Background(), "no-such-id")
	require.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestClearAll(t *testing.T) {
	svc, _, _ := newTestDocumentService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "doc one", nil)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "doc two", nil)
	require.NoError(t, err)

	require.NoError(t, svc.ClearAll(ctx))

	docs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestChunkText(t *testing.T) {
	chunks := chunkText("abcdefghij", 4, 1)
	require.NotEmpty(t, chunks)
	require.Equal(t, "abcd", chunks[0])
	// consecutive chunks overlap by one rune
	require.Equal(t, byte('d'), chunks[1][0])

	var joinedLen int
	for _, c := range chunks {
		joinedLen += len(c)
	}
	require.GreaterOrEqual(t, joinedLen, len("abcdefghij"))

	require.Empty(t, chunkText("", 4, 1))
	require.Nil(t, chunkText("abc", 0, 0))
}
