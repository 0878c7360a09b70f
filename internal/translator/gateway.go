package translator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/prefeitura-rio/app-migracao-schema/internal/models"
	"google.golang.org/genai"
)

// GatewayConfig configuração para o gateway de tradução
type GatewayConfig struct {
	Model            string
	MaxAttempts      int
	CallTimeout      time.Duration
	BackoffCap       time.Duration
	CircuitThreshold int
	CircuitCooldown  time.Duration
	CacheTTLMinutes  int
	CacheMaxSize     int
}

// DefaultGatewayConfig retorna configuração padrão
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		Model:            "gemini-2.0-flash",
		MaxAttempts:      3,
		CallTimeout:      45 * time.Second,
		BackoffCap:       30 * time.Second,
		CircuitThreshold: 5,
		CircuitCooldown:  90 * time.Second,
		CacheTTLMinutes:  30,
		CacheMaxSize:     1000,
	}
}

// Gateway encapsula as chamadas ao serviço de tradução com timeout por
// chamada, retentativa com backoff exponencial e circuit breaker. O gateway
// nunca aciona o tradutor determinístico: ao esgotar as tentativas devolve
// *GatewayError e o orquestrador decide a substituição.
type Gateway struct {
	config  GatewayConfig
	circuit *CircuitBreaker
	cache   *TranslationCache

	// substituíveis em teste
	generate func(ctx context.Context, prompt string) (string, error)
	sleep    func(d time.Duration)
}

// NewGateway cria um novo gateway sobre o cliente Gemini
func NewGateway(client *genai.Client, cfg GatewayConfig) *Gateway {
	def := DefaultGatewayConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = def.CallTimeout
	}
	if cfg.BackoffCap <= 0 {
		cfg.BackoffCap = def.BackoffCap
	}
	if cfg.CircuitThreshold <= 0 {
		cfg.CircuitThreshold = def.CircuitThreshold
	}
	if cfg.CircuitCooldown <= 0 {
		cfg.CircuitCooldown = def.CircuitCooldown
	}
	if cfg.CacheTTLMinutes <= 0 {
		cfg.CacheTTLMinutes = def.CacheTTLMinutes
	}
	if cfg.CacheMaxSize <= 0 {
		cfg.CacheMaxSize = def.CacheMaxSize
	}

	g := &Gateway{
		config:  cfg,
		circuit: NewCircuitBreaker(cfg.CircuitThreshold, cfg.CircuitCooldown),
		cache:   NewTranslationCache(time.Duration(cfg.CacheTTLMinutes)*time.Minute, cfg.CacheMaxSize),
		sleep:   time.Sleep,
	}
	if client != nil {
		g.generate = func(ctx context.Context, prompt string) (string, error) {
			return generateContent(ctx, client, cfg.Model, prompt)
		}
	}
	return g
}

// Circuit retorna o circuit breaker do gateway
func (g *Gateway) Circuit() *CircuitBreaker {
	return g.circuit
}

// TranslateOne traduz um único objeto de schema via serviço externo.
// Com o circuito aberto falha imediatamente com ErrCircuitOpen, sem consumir
// tentativa. Falhas de transporte, timeout e formato contam como tentativa;
// ao esgotar MaxAttempts devolve *GatewayError embrulhando o último erro.
func (g *Gateway) TranslateOne(ctx context.Context, systemPrompt string, obj models.SchemaObject) (models.TranslationResult, error) {
	if g.generate == nil {
		return models.TranslationResult{}, ErrNoClient
	}

	if g.circuit.IsOpen() {
		return models.TranslationResult{}, ErrCircuitOpen
	}

	payload, err := json.Marshal(map[string]any{"objects": []models.SchemaObject{obj}})
	if err != nil {
		return models.TranslationResult{}, fmt.Errorf("erro ao montar payload de tradução: %w", err)
	}

	cacheKey := g.cacheKey(systemPrompt, payload)
	if cached, ok := g.cache.Get(cacheKey); ok {
		return cached, nil
	}

	prompt := systemPrompt + "\n\n" + string(payload)

	var lastErr error
	for attempt := 1; attempt <= g.config.MaxAttempts; attempt++ {
		ctxAttempt, cancel := context.WithTimeout(ctx, g.config.CallTimeout)
		text, err := g.generate(ctxAttempt, prompt)
		cancel()

		if err == nil {
			var result models.TranslationResult
			result, err = decodeResponse(text, obj)
			if err == nil {
				g.circuit.RecordSuccess()
				g.cache.Set(cacheKey, result)
				return result, nil
			}
		}

		lastErr = err
		g.circuit.RecordFailure()

		if attempt < g.config.MaxAttempts {
			delay := g.backoffDelay(attempt)
			log.Printf("[Gateway] Tradução de %s falhou (tentativa %d/%d): %v, aguardando %s",
				obj.Name, attempt, g.config.MaxAttempts, err, delay)
			g.sleep(delay)
		}
	}

	return models.TranslationResult{}, &GatewayError{Attempts: g.config.MaxAttempts, Err: lastErr}
}

// backoffDelay retorna min(cap, 2^(attempt-1)) segundos
func (g *Gateway) backoffDelay(attempt int) time.Duration {
	delay := time.Duration(1<<uint(attempt-1)) * time.Second
	if delay > g.config.BackoffCap {
		return g.config.BackoffCap
	}
	return delay
}

func (g *Gateway) cacheKey(systemPrompt string, payload []byte) string {
	hash := sha256.Sum256([]byte(g.config.Model + "|" + systemPrompt + "|" + string(payload)))
	return hex.EncodeToString(hash[:])
}

// generateContent chama o Gemini e extrai o texto da primeira parte da resposta
func generateContent(ctx context.Context, client *genai.Client, model, prompt string) (string, error) {
	content := genai.NewContentFromText(prompt, genai.RoleUser)

	resp, err := client.Models.GenerateContent(ctx, model, []*genai.Content{content}, nil)
	if err != nil {
		return "", fmt.Errorf("erro ao chamar Gemini: %w", err)
	}

	return extractResponseText(resp)
}

// extractResponseText devolve o campo de texto da primeira parte, sem passar
// pela representação de struct da parte (que corromperia JSON não cercado)
func extractResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	part := resp.Candidates[0].Content.Parts[0]
	if part == nil || part.Text == "" {
		return "", ErrEmptyResponse
	}
	return part.Text, nil
}

// decodeResponse interpreta o texto devolvido pelo serviço. Tenta primeiro
// JSON direto; depois JSON dentro de cercas de código markdown; texto puro
// que não é JSON vira um resultado de objeto único com os defaults do objeto
// de entrada. Qualquer registro decodificado passa pelo Normalize.
func decodeResponse(text string, def models.SchemaObject) (models.TranslationResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.TranslationResult{}, ErrEmptyResponse
	}

	var raw any
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		if strings.Contains(trimmed, "```") {
			stripped := stripCodeFences(trimmed)
			if err2 := json.Unmarshal([]byte(stripped), &raw); err2 != nil {
				return rawTextResult(trimmed, def), nil
			}
		} else {
			return rawTextResult(trimmed, def), nil
		}
	}

	return Normalize(raw, def)
}

// stripCodeFences remove marcadores ```json ... ``` do texto
func stripCodeFences(s string) string {
	if idx := strings.Index(s, "```json"); idx != -1 {
		s = s[idx+len("```json"):]
	} else if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
	}
	if end := strings.Index(s, "```"); end != -1 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// rawTextResult embrulha uma resposta em texto puro como resultado de objeto único
func rawTextResult(text string, def models.SchemaObject) models.TranslationResult {
	return models.TranslationResult{
		Objects: []models.TranslatedObject{{
			Name:      def.Name,
			Kind:      def.Kind,
			Schema:    def.Schema,
			TargetSQL: text,
			Notes:     []string{"resposta em texto puro do serviço de tradução"},
		}},
		Warnings: []string{},
	}
}

// SystemPrompt monta a instrução de sistema enviada ao serviço de tradução
func SystemPrompt(sourceDialect, targetDialect string) string {
	return fmt.Sprintf(`Você é um tradutor de DDL de banco de dados. Converta cada objeto do dialeto %s para o dialeto %s.

Responda com JSON neste formato:
{
  "objects": [
    {"name": "NOME", "kind": "table", "schema": "SCHEMA", "target_sql": "DDL traduzido", "notes": ["observações"]}
  ],
  "warnings": ["avisos gerais"]
}

Regras:
- target_sql: o DDL completo no dialeto de destino, pronto para execução
- preserve nomes de objetos e colunas
- notes: uma entrada por reescrita relevante aplicada
- warnings: limitações que o operador precisa revisar

Retorne APENAS o JSON, sem explicações.`, sourceDialect, targetDialect)
}
