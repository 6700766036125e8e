package ai

import "context"

// Service binds the OpenAI-compatible client to the configured chat and
// embedding models so callers don't carry provider settings around.
type Service struct {
	client *OpenAICompatibleClient
	chat   ChatConfig
	emb    EmbeddingConfig
}

func NewService(client *OpenAICompatibleClient, chat ChatConfig, emb EmbeddingConfig) *Service {
	return &Service{client: client, chat: chat, emb: emb}
}

func (s *Service) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	return s.client.Complete(ctx, s.chat, messages)
}

func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.client.Embed(ctx, s.emb, text)
}

func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return s.client.EmbedBatch(ctx, s.emb, texts)
}
