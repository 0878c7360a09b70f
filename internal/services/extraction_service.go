package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/prefeitura-rio/app-migracao-schema/internal/models"
)

// Extractor abstrai a extração de schema do banco de origem
type Extractor interface {
	Connect(ctx context.Context) error
	Close() error
	ExtractSchema(ctx context.Context) (*models.ExtractionResult, error)
}

// ExtractionService mantém o último resultado de extração em memória,
// servindo de insumo para o orquestrador de migração
type ExtractionService struct {
	mu        sync.RWMutex
	extractor Extractor
	result    *models.ExtractionResult
	updatedAt int64
}

// NewExtractionService cria o serviço de extração. O extractor pode ser nil
// quando o banco de origem não está configurado; nesse caso Run retorna erro.
func NewExtractionService(extractor Extractor) *ExtractionService {
	return &ExtractionService{extractor: extractor}
}

// Run conecta ao banco de origem, extrai o schema e armazena o resultado
func (s *ExtractionService) Run(ctx context.Context) (*models.ExtractionResult, error) {
	if s.extractor == nil {
		return nil, ErrNoSource
	}

	log.Printf("[Extraction] Iniciando extração de schema do banco de origem")

	if err := s.extractor.Connect(ctx); err != nil {
		return nil, fmt.Errorf("erro ao conectar ao banco de origem: %w", err)
	}
	defer s.extractor.Close()

	result, err := s.extractor.ExtractSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro ao extrair schema: %w", err)
	}

	s.SetResult(result)
	log.Printf("[Extraction] Extração concluída: %d sequências, %d tabelas, %d views",
		len(result.Sequences), len(result.Tables), len(result.Views))

	return result, nil
}

// SetResult armazena um resultado de extração (usado também por testes e
// por cargas de schema fornecidas diretamente pela API)
func (s *ExtractionService) SetResult(result *models.ExtractionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
	s.updatedAt = time.Now().Unix()
}

// Result retorna o último resultado de extração, ou nil se nenhum existir
func (s *ExtractionService) Result() *models.ExtractionResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// Status retorna um resumo do estado atual da extração
func (s *ExtractionService) Status() models.ExtractionStatusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.result == nil {
		return models.ExtractionStatusResponse{}
	}

	return models.ExtractionStatusResponse{
		Extracted: true,
		Sequences: len(s.result.Sequences),
		Tables:    len(s.result.Tables),
		Views:     len(s.result.Views),
		Total:     s.result.Total(),
		UpdatedAt: s.updatedAt,
	}
}
