package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"ai-dietician/internal/shared"
)

// ResponseStore is the persistence used by CachedTextGenerator.
type ResponseStore interface {
	Save(key string, v any) error
	Load(key string, v any) error
	Exists(key string) bool
}

type cachedResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
}

// CachedTextGenerator wraps a TextGenerator and keeps its answers in a
// ResponseStore keyed by prompt, so the same plan never pays for advice twice.
type CachedTextGenerator struct {
	realGen TextGenerator
	store   ResponseStore
	model   string
	logger  *zap.Logger
	mu      sync.Mutex
}

// NewCachedTextGenerator creates a new CachedTextGenerator. model is mixed
// into the cache key so switching models does not serve stale answers.
func NewCachedTextGenerator(realGen TextGenerator, store ResponseStore, model string, logger *zap.Logger) *CachedTextGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedTextGenerator{realGen: realGen, store: store, model: model, logger: logger}
}

// GenerateContent checks the cache first. If the prompt is not found, it
// calls the real generator and stores the result. Cache hits report zero
// token usage.
func (c *CachedTextGenerator) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	key := c.key(prompt)

	c.mu.Lock()
	if c.store.Exists(key) {
		var cached cachedResponse
		err := c.store.Load(key, &cached)
		c.mu.Unlock()
		if err == nil {
			c.logger.Debug("Advice cache hit", zap.String("key", key))
			return ContentResponse{Content: cached.Content, Usage: shared.TokenUsage{Model: cached.Model}}, nil
		}
		c.logger.Warn("Advice cache entry unreadable", zap.String("key", key), zap.Error(err))
	} else {
		c.mu.Unlock()
	}

	resp, err := c.realGen.GenerateContent(ctx, prompt)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to generate content using real generator: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Save(key, cachedResponse{Content: resp.Content, Model: resp.Usage.Model}); err != nil {
		c.logger.Warn("Failed to cache advice", zap.String("key", key), zap.Error(err))
	}
	return resp, nil
}

func (c *CachedTextGenerator) key(prompt string) string {
	sum := sha256.Sum256([]byte(c.model + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}
