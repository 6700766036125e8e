package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newEmbeddingStub answers like an OpenAI-compatible /embeddings endpoint,
// returning one vector per input.
func newEmbeddingStub(t *testing.T, requests *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*requests++
		require.Equal(t, "/embeddings", r.URL.Path)

		var req struct {
			Input any `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		count := 1
		if list, ok := req.Input.([]any); ok {
			count = len(list)
		}

		type item struct {
			Embedding []float32 `json:"embedding"`
		}
		items := make([]item, count)
		for i := range items {
			items[i] = item{Embedding: []float32{float32(i), 1}}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"data": items}))
	}))
}

func TestEmbedBatchKeepsAlignment(t *testing.T) {
	var requests int
	server := newEmbeddingStub(t, &requests)
	defer server.Close()

	client := NewOpenAICompatibleClient(5 * time.Second)
	cfg := EmbeddingConfig{BaseURL: server.URL, Model: "test-embedding"}

	vectors, err := client.EmbedBatch(context.Background(), cfg, []string{"ab", "cd", "ef"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	require.Equal(t, float32(0), vectors[0][0])
	require.Equal(t, float32(2), vectors[2][0])
	require.Equal(t, 1, requests)
}

func TestEmbedBatchRejectsBlankInput(t *testing.T) {
	var requests int
	server := newEmbeddingStub(t, &requests)
	defer server.Close()

	client := NewOpenAICompatibleClient(5 * time.Second)
	cfg := EmbeddingConfig{BaseURL: server.URL, Model: "test-embedding"}

	_, err := client.EmbedBatch(context.Background(), cfg, []string{"ab", "   ", "cd"})
	require.Error(t, err)
	require.Zero(t, requests, "blank input fails before any request is sent")
}

func TestEmbedSingle(t *testing.T) {
	var requests int
	server := newEmbeddingStub(t, &requests)
	defer server.Close()

	client := NewOpenAICompatibleClient(5 * time.Second)
	cfg := EmbeddingConfig{BaseURL: server.URL, Model: "test-embedding"}

	vector, err := client.Embed(context.Background(), cfg, "hello")
	require.NoError(t, err)
	require.NotEmpty(t, vector)
	require.Equal(t, 1, requests)
}
