package app

import (
	"context"
	"strings"
	"time"

	"ragchat/internal/ai"
	"ragchat/internal/model"
	"ragchat/internal/vectorstore/qdrant"
)

type fakeUserRepo struct {
	byName map[string]*model.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byName: map[string]*model.User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(user *model.User) error {
	user.ID = f.nextID
	f.nextID++
	cpy := *user
	f.byName[user.Username] = &cpy
	return nil
}

func (f *fakeUserRepo) GetByUsername(username string) (*model.User, error) {
	u, ok := f.byName[username]
	if !ok {
		return nil, nil
	}
	cpy := *u
	return &cpy, nil
}

func (f *fakeUserRepo) GetByID(id uint) (*model.User, error) {
	for _, u := range f.byName {
		if u.ID == id {
			cpy := *u
			return &cpy, nil
		}
	}
	return nil, nil
}

type fakeTokenStore struct {
	active  map[string]uint
	saveErr error
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{active: map[string]uint{}}
}

func (f *fakeTokenStore) Save(_ context.Context, jti string, userID uint, _ time.Duration) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.active[jti] = userID
	return nil
}

func (f *fakeTokenStore) IsActive(_ context.Context, jti string) (bool, error) {
	_, ok := f.active[jti]
	return ok, nil
}

func (f *fakeTokenStore) Revoke(_ context.Context, jti string) error {
	delete(f.active, jti)
	return nil
}

// fakeIndex is an in-memory stand-in for the Qdrant client.
type fakeIndex struct {
	points     []qdrant.Point
	upsertErr  error
	searchErr  error
	scrollErr  error
	lastSearch struct {
		topK      int
		threshold float64
	}
}

func (f *fakeIndex) Upsert(_ context.Context, points []qdrant.Point) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.points = append(f.points, points...)
	return nil
}

func (f *fakeIndex) ScrollAll(_ context.Context) ([]map[string]any, error) {
	if f.scrollErr != nil {
		return nil, f.scrollErr
	}
	payloads := make([]map[string]any, 0, len(f.points))
	for _, p := range f.points {
		payloads = append(payloads, p.Payload)
	}
	return payloads, nil
}

func (f *fakeIndex) ScrollByField(_ context.Context, field, value string) ([]map[string]any, error) {
	if f.scrollErr != nil {
		return nil, f.scrollErr
	}
	var payloads []map[string]any
	for _, p := range f.points {
		if s, ok := p.Payload[field].(string); ok && s == value {
			payloads = append(payloads, p.Payload)
		}
	}
	return payloads, nil
}

func (f *fakeIndex) Recreate(_ context.Context) error {
	f.points = nil
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ []float32, topK int, threshold float64) ([]qdrant.ScoredPoint, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.lastSearch.topK = topK
	f.lastSearch.threshold = threshold
	hits := make([]qdrant.ScoredPoint, 0, len(f.points))
	for _, p := range f.points {
		hits = append(hits, qdrant.ScoredPoint{Score: 0.9, Payload: p.Payload})
		if len(hits) == topK {
			break
		}
	}
	return hits, nil
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls++
	return []float32{float32(len(text)), 1, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1, 0}
	}
	return out, nil
}

type fakeCompleter struct {
	err     error
	answer  string
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	f.prompts = append(f.prompts, b.String())
	if f.answer == "" {
		return "stub answer", nil
	}
	return f.answer, nil
}
