package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ragchat/internal/model"
	"ragchat/internal/pkg/pdfextract"
	"ragchat/internal/vectorstore/qdrant"
)

const embeddingBatchSize = 10 // providers often cap batch size

// Payload keys written with every chunk point.
const (
	payloadDocumentID  = "document_id"
	payloadCreatedAt   = "created_at"
	payloadChunkIndex  = "chunk_index"
	payloadText        = "text"
	payloadFullContent = "full_content"
	payloadMetadata    = "metadata"
)

// VectorIndex is the slice of the Qdrant client the document service uses.
type VectorIndex interface {
	Upsert(ctx context.Context, points []qdrant.Point) error
	ScrollAll(ctx context.Context) ([]map[string]any, error)
	ScrollByField(ctx context.Context, field, value string) ([]map[string]any, error)
	Recreate(ctx context.Context) error
}

// Embedder produces embedding vectors for chunk and query text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type DocumentService struct {
	index        VectorIndex
	embedder     Embedder
	chunkSize    int
	chunkOverlap int
	logger       *zap.Logger
}

type AddResult struct {
	DocumentID     string
	DocumentsCount int
	Message        string
}

func NewDocumentService(index VectorIndex, embedder Embedder, chunkSize, chunkOverlap int, logger *zap.Logger) *DocumentService {
	if chunkSize <= 0 {
		chunkSize = 512
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		index:        index,
		embedder:     embedder,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       logger,
	}
}

// Add splits content into chunks, embeds them and upserts one point per
// chunk. The first chunk additionally carries the full document text so
// list/get can round-trip the original content.
func (s *DocumentService) Add(ctx context.Context, content string, metadata map[string]string) (*AddResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrInvalidInput
	}

	chunks := chunkText(content, s.chunkSize, s.chunkOverlap)
	// Long whitespace runs can produce all-blank chunks. The embedding API
	// rejects blank input, so drop them before batching.
	kept := chunks[:0]
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) != "" {
			kept = append(kept, chunk)
		}
	}
	chunks = kept
	if len(chunks) == 0 {
		return nil, ErrInvalidInput
	}

	var embeddings [][]float32
	for i := 0; i < len(chunks); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch, err := s.embedder.EmbedBatch(ctx, chunks[i:end])
		if err != nil {
			return nil, asDependencyFailure(err)
		}
		embeddings = append(embeddings, batch...)
	}
	if len(embeddings) != len(chunks) {
		return nil, asDependencyFailure(fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(embeddings)))
	}

	docID := uuid.NewString()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	points := make([]qdrant.Point, len(chunks))
	for i := range chunks {
		payload := map[string]any{
			payloadDocumentID: docID,
			payloadCreatedAt:  createdAt,
			payloadChunkIndex: i,
			payloadText:       chunks[i],
		}
		if i == 0 {
			payload[payloadFullContent] = content
		}
		if len(metadata) > 0 {
			payload[payloadMetadata] = metadata
		}
		points[i] = qdrant.Point{
			ID:      uuid.NewString(),
			Vector:  embeddings[i],
			Payload: payload,
		}
	}

	if err := s.index.Upsert(ctx, points); err != nil {
		return nil, asDependencyFailure(err)
	}

	s.logger.Info("document indexed",
		zap.String("document_id", docID),
		zap.Int("chunks", len(chunks)),
	)
	return &AddResult{
		DocumentID:     docID,
		DocumentsCount: len(chunks),
		Message:        fmt.Sprintf("Successfully uploaded 1 document(s) with %d chunk(s)", len(chunks)),
	}, nil
}

// AddFile extracts text from a recognized upload (markdown, plain text or
// PDF) and delegates to Add. Anything else is rejected.
func (s *DocumentService) AddFile(ctx context.Context, filename string, file io.Reader, metadata map[string]string) (*AddResult, error) {
	var text string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown", ".txt":
		raw, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("read upload failed: %w", err)
		}
		text = string(raw)
	case ".pdf":
		extracted, err := pdfextract.ExtractText(file)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		text = extracted
	default:
		return nil, ErrUnsupportedFile
	}

	if strings.TrimSpace(text) == "" {
		return nil, ErrInvalidInput
	}

	if metadata == nil {
		metadata = map[string]string{}
	}
	if _, ok := metadata["filename"]; !ok {
		metadata["filename"] = filepath.Base(filename)
	}
	return s.Add(ctx, text, metadata)
}

// List returns every stored document in creation order, deduplicated from
// the per-chunk points.
func (s *DocumentService) List(ctx context.Context) ([]model.Document, error) {
	payloads, err := s.index.ScrollAll(ctx)
	if err != nil {
		return nil, asDependencyFailure(err)
	}

	docs := assembleDocuments(payloads)
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt != docs[j].CreatedAt {
			return docs[i].CreatedAt < docs[j].CreatedAt
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*model.Document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidInput
	}
	payloads, err := s.index.ScrollByField(ctx, payloadDocumentID, id)
	if err != nil {
		return nil, asDependencyFailure(err)
	}
	docs := assembleDocuments(payloads)
	if len(docs) == 0 {
		return nil, ErrDocumentNotFound
	}
	return &docs[0], nil
}

// ClearAll drops and recreates the backing collection.
func (s *DocumentService) ClearAll(ctx context.Context) error {
	if err := s.index.Recreate(ctx); err != nil {
		return asDependencyFailure(err)
	}
	s.logger.Info("document store cleared")
	return nil
}

// assembleDocuments folds chunk payloads back into whole documents. Content
// comes from the full_content chunk; if it is missing, chunks are stitched
// in index order.
func assembleDocuments(payloads []map[string]any) []model.Document {
	type partial struct {
		doc    model.Document
		full   bool
		chunks map[int]string
	}
	byID := make(map[string]*partial)

	for _, payload := range payloads {
		id, _ := payload[payloadDocumentID].(string)
		if id == "" {
			continue
		}
		p, ok := byID[id]
		if !ok {
			p = &partial{
				doc:    model.Document{ID: id},
				chunks: make(map[int]string),
			}
			byID[id] = p
		}
		if createdAt, ok := payload[payloadCreatedAt].(string); ok && p.doc.CreatedAt == "" {
			p.doc.CreatedAt = createdAt
		}
		// Metadata arrives as map[string]string from in-process writes and
		// as map[string]any after a JSON round-trip through Qdrant.
		if p.doc.Metadata == nil {
			switch meta := payload[payloadMetadata].(type) {
			case map[string]string:
				p.doc.Metadata = make(map[string]string, len(meta))
				for k, v := range meta {
					p.doc.Metadata[k] = v
				}
			case map[string]any:
				p.doc.Metadata = make(map[string]string, len(meta))
				for k, v := range meta {
					if s, ok := v.(string); ok {
						p.doc.Metadata[k] = s
					}
				}
			}
		}
		if full, ok := payload[payloadFullContent].(string); ok && full != "" {
			p.doc.Content = full
			p.full = true
		}
		if !p.full {
			idx := 0
			if f, ok := payload[payloadChunkIndex].(float64); ok {
				idx = int(f)
			} else if n, ok := payload[payloadChunkIndex].(int); ok {
				idx = n
			}
			if text, ok := payload[payloadText].(string); ok {
				p.chunks[idx] = text
			}
		}
	}

	docs := make([]model.Document, 0, len(byID))
	for _, p := range byID {
		if !p.full && len(p.chunks) > 0 {
			indexes := make([]int, 0, len(p.chunks))
			for idx := range p.chunks {
				indexes = append(indexes, idx)
			}
			sort.Ints(indexes)
			var b strings.Builder
			for _, idx := range indexes {
				b.WriteString(p.chunks[idx])
			}
			p.doc.Content = b.String()
		}
		docs = append(docs, p.doc)
	}
	return docs
}

// chunkText splits text into overlapping chunks by rune count.
func chunkText(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap >= size {
		overlap = size / 2
	}
	var chunks []string
	runes := []rune(text)
	for i := 0; i < len(runes); {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		i += size - overlap
		if i >= len(runes) {
			break
		}
	}
	return chunks
}
