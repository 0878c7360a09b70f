package translator

import (
	"sync"
	"time"

	"github.com/prefeitura-rio/app-migracao-schema/internal/models"
)

// TranslationCache armazena traduções bem-sucedidas em memória, evitando
// chamadas repetidas ao serviço externo para o mesmo DDL de origem
type TranslationCache struct {
	data    map[string]cachedTranslation
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int
}

type cachedTranslation struct {
	result    models.TranslationResult
	timestamp time.Time
}

// NewTranslationCache cria um novo cache de traduções
func NewTranslationCache(ttl time.Duration, maxSize int) *TranslationCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &TranslationCache{
		data:    make(map[string]cachedTranslation),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get busca uma tradução no cache
func (c *TranslationCache) Get(key string) (models.TranslationResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if cached, ok := c.data[key]; ok {
		if time.Since(cached.timestamp) < c.ttl {
			return cached.result, true
		}
	}
	return models.TranslationResult{}, false
}

// Set armazena uma tradução no cache
func (c *TranslationCache) Set(key string, result models.TranslationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Limpa entradas expiradas se cache está cheio
	if len(c.data) >= c.maxSize {
		c.cleanup()
	}

	c.data[key] = cachedTranslation{
		result:    result,
		timestamp: time.Now(),
	}
}

func (c *TranslationCache) cleanup() {
	now := time.Now()
	for key, cached := range c.data {
		if now.Sub(cached.timestamp) > c.ttl {
			delete(c.data, key)
		}
	}
}
