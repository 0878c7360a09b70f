package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prefeitura-rio/app-migracao-schema/internal/models"
	"github.com/prefeitura-rio/app-migracao-schema/internal/translator"
)

// Translator é o gateway de tradução para o serviço externo
type Translator interface {
	TranslateOne(ctx context.Context, systemPrompt string, obj models.SchemaObject) (models.TranslationResult, error)
}

// Fallback é o tradutor local baseado em regras, usado quando o gateway falha
type Fallback interface {
	Translate(objects []models.SchemaObject, sourceDialect, targetDialect string) models.TranslationResult
}

// TargetAdapter aplica o DDL traduzido no banco de destino
type TargetAdapter interface {
	CreateObjects(ctx context.Context, objects []models.TranslatedObject) models.CreationResult
}

// RunStore persiste o histórico de execuções de migração
type RunStore interface {
	CreateRun(ctx context.Context, record models.MigrationRunRecord) error
	UpdateRun(ctx context.Context, record models.MigrationRunRecord) error
	ListRuns(ctx context.Context, page, perPage int) (models.MigrationHistoryResponse, error)
}

// MigrationConfig contém a configuração do orquestrador de migração
type MigrationConfig struct {
	SourceDialect string
	TargetDialect string
	BatchSize     int
}

// DefaultMigrationConfig retorna a configuração padrão do orquestrador
func DefaultMigrationConfig() MigrationConfig {
	return MigrationConfig{
		SourceDialect: translator.DialectOracle,
		TargetDialect: translator.DialectClickHouse,
		BatchSize:     5,
	}
}

// MigrationService orquestra a migração de estrutura: tradução em lotes via
// gateway com substituição por fallback, reanexação do DDL de origem e
// criação dos objetos no banco de destino
type MigrationService struct {
	config     MigrationConfig
	state      *RunState
	extraction *ExtractionService
	translator Translator
	fallback   Fallback
	target     TargetAdapter
	runStore   RunStore
}

// NewMigrationService cria o orquestrador de migração. translator, target e
// runStore podem ser nil quando os respectivos colaboradores não estão
// configurados; fallback e extraction são obrigatórios.
func NewMigrationService(cfg MigrationConfig, extraction *ExtractionService, gw Translator, fb Fallback, target TargetAdapter, runStore RunStore) *MigrationService {
	defaults := DefaultMigrationConfig()
	if cfg.SourceDialect == "" {
		cfg.SourceDialect = defaults.SourceDialect
	}
	if cfg.TargetDialect == "" {
		cfg.TargetDialect = defaults.TargetDialect
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}

	return &MigrationService{
		config:     cfg,
		state:      NewRunState(),
		extraction: extraction,
		translator: gw,
		fallback:   fb,
		target:     target,
		runStore:   runStore,
	}
}

// IsRunning informa se há migração em andamento
func (s *MigrationService) IsRunning() bool {
	return s.state.IsRunning()
}

// Status retorna o estado atual da migração para o poll de progresso
func (s *MigrationService) Status() models.MigrationStatusResponse {
	return s.state.Snapshot()
}

// Results retorna os resultados armazenados da última execução
func (s *MigrationService) Results() models.MigrationResultsResponse {
	return s.state.Results()
}

// Reset descarta os resultados da última execução, permitindo nova migração
func (s *MigrationService) Reset() error {
	return s.state.Reset()
}

// History retorna o histórico persistido de execuções
func (s *MigrationService) History(ctx context.Context, page, perPage int) (models.MigrationHistoryResponse, error) {
	if s.runStore == nil {
		return models.MigrationHistoryResponse{Runs: []models.MigrationRunRecord{}}, nil
	}
	return s.runStore.ListRuns(ctx, page, perPage)
}

// StartMigration inicia uma migração de estrutura em background e retorna
// imediatamente. Se já houver migração em andamento retorna
// ErrMigrationInProgress; se a última migração foi concluída e não houve
// reset, retorna o snapshot armazenado sem iniciar nova execução.
func (s *MigrationService) StartMigration(req models.MigrationStartRequest) (models.MigrationStatusResponse, error) {
	if s.state.IsRunning() {
		return s.state.Snapshot(), ErrMigrationInProgress
	}
	if s.state.IsDone() {
		log.Printf("[Migration] Migração já concluída; retornando resultado armazenado")
		return s.state.Snapshot(), nil
	}

	extraction := s.extraction.Result()
	if extraction == nil {
		return models.MigrationStatusResponse{}, ErrExtractionMissing
	}
	objects := extraction.Flatten()
	if len(objects) == 0 {
		return models.MigrationStatusResponse{}, ErrExtractionEmpty
	}
	if !req.DryRun && s.target == nil {
		return models.MigrationStatusResponse{}, ErrNoTarget
	}

	runID := uuid.New().String()
	if !s.state.TryStart(runID, len(objects), req.DryRun) {
		return s.state.Snapshot(), ErrMigrationInProgress
	}

	log.Printf("[Migration] Iniciando migração %s: %d objetos (dry_run=%v)", runID, len(objects), req.DryRun)
	go s.executeMigration(context.Background(), runID, objects, req.DryRun)

	return s.state.Snapshot(), nil
}

// executeMigration é o corpo da migração, executado em background
func (s *MigrationService) executeMigration(ctx context.Context, runID string, objects []models.SchemaObject, dryRun bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Migration] Pânico durante a migração %s: %v", runID, r)
			s.failRun(ctx, runID, fmt.Sprintf("erro interno durante a migração: %v", r), nil, nil, len(objects), dryRun)
		}
	}()

	startedAt := time.Now().Unix()
	s.recordRun(ctx, models.MigrationRunRecord{
		RunID:         runID,
		Status:        models.RunStatusStructureInProgress,
		SourceDialect: s.config.SourceDialect,
		TargetDialect: s.config.TargetDialect,
		StartedAt:     startedAt,
		TotalObjects:  len(objects),
		DryRun:        dryRun,
	}, true)

	translation := s.translateAll(ctx, objects)
	s.reattachSourceDDL(translation, objects)

	if dryRun {
		log.Printf("[Migration] Migração %s em modo dry-run; pulando criação no destino", runID)
		s.recordRun(ctx, models.MigrationRunRecord{
			RunID:             runID,
			Status:            models.RunStatusStructureComplete,
			SourceDialect:     s.config.SourceDialect,
			TargetDialect:     s.config.TargetDialect,
			StartedAt:         startedAt,
			CompletedAt:       time.Now().Unix(),
			TotalObjects:      len(objects),
			TranslatedObjects: len(translation.Objects),
			DryRun:            true,
		}, false)
		s.state.FinishSuccess(translation, nil)
		return
	}

	s.state.SetProgress(80, "Creating objects in target database")
	creation := s.target.CreateObjects(ctx, translation.Objects)
	s.state.SetProgress(90, "Verifying created objects")

	if !creation.OK {
		message := "falha ao criar objetos no banco de destino"
		if len(creation.Errors) > 0 {
			message = fmt.Sprintf("%s: %s: %s", message, creation.Errors[0].Object, creation.Errors[0].Error)
		}
		log.Printf("[Migration] Migração %s falhou: %s", runID, message)
		s.recordRun(ctx, models.MigrationRunRecord{
			RunID:             runID,
			Status:            models.RunStatusFailedStructure,
			SourceDialect:     s.config.SourceDialect,
			TargetDialect:     s.config.TargetDialect,
			StartedAt:         startedAt,
			CompletedAt:       time.Now().Unix(),
			TotalObjects:      len(objects),
			TranslatedObjects: len(translation.Objects),
			DryRun:            false,
			ErrorMessage:      message,
		}, false)
		s.state.FinishFailure(message, translation, &creation)
		return
	}

	s.state.SetProgress(95, "Finishing structure migration")
	s.recordRun(ctx, models.MigrationRunRecord{
		RunID:             runID,
		Status:            models.RunStatusStructureComplete,
		SourceDialect:     s.config.SourceDialect,
		TargetDialect:     s.config.TargetDialect,
		StartedAt:         startedAt,
		CompletedAt:       time.Now().Unix(),
		TotalObjects:      len(objects),
		TranslatedObjects: len(translation.Objects),
		DryRun:            false,
	}, false)
	s.state.FinishSuccess(translation, &creation)
	log.Printf("[Migration] Migração %s concluída: %d objetos criados", runID, len(translation.Objects))
}

// translateAll traduz todos os objetos em lotes. Dentro de cada lote os
// objetos são despachados concorrentemente ao gateway; falhas individuais
// são substituídas pelo fallback local, de modo que a tradução como um todo
// nunca falha.
func (s *MigrationService) translateAll(ctx context.Context, objects []models.SchemaObject) *models.TranslationResult {
	total := len(objects)
	result := &models.TranslationResult{
		Objects:  make([]models.TranslatedObject, 0, total),
		Warnings: []string{},
	}

	systemPrompt := translator.SystemPrompt(s.config.SourceDialect, s.config.TargetDialect)
	done := 0

	for start := 0; start < total; start += s.config.BatchSize {
		end := start + s.config.BatchSize
		if end > total {
			end = total
		}
		batch := objects[start:end]

		s.state.SetProgress(10+(20*done)/total, fmt.Sprintf("Traduzindo objetos %d-%d de %d", start+1, end, total))

		type slot struct {
			result models.TranslationResult
			err    error
		}
		slots := make([]slot, len(batch))

		var wg sync.WaitGroup
		for i, obj := range batch {
			wg.Add(1)
			go func(i int, obj models.SchemaObject) {
				defer wg.Done()
				slots[i].result, slots[i].err = s.translateObject(ctx, systemPrompt, obj)
			}(i, obj)
		}
		wg.Wait()

		for i, sl := range slots {
			if sl.err != nil || len(sl.result.Objects) == 0 {
				if sl.err != nil {
					log.Printf("[Migration] Gateway falhou para %s; usando fallback: %v", batch[i].Key(), sl.err)
					result.Warnings = append(result.Warnings,
						fmt.Sprintf("objeto %s traduzido pelo fallback local: %v", batch[i].Name, sl.err))
				} else {
					log.Printf("[Migration] Gateway retornou resposta vazia para %s; usando fallback", batch[i].Key())
					result.Warnings = append(result.Warnings,
						fmt.Sprintf("objeto %s traduzido pelo fallback local: resposta vazia do gateway", batch[i].Name))
				}
				sl.result = s.fallback.Translate([]models.SchemaObject{batch[i]}, s.config.SourceDialect, s.config.TargetDialect)
			}
			result.Objects = append(result.Objects, sl.result.Objects...)
			result.Warnings = append(result.Warnings, sl.result.Warnings...)
		}

		done += len(batch)
	}

	s.state.SetProgress(30, fmt.Sprintf("Tradução concluída: %d objetos", len(result.Objects)))
	return result
}

// translateObject traduz um único objeto via gateway. Sem gateway
// configurado, pula direto para o fallback.
func (s *MigrationService) translateObject(ctx context.Context, systemPrompt string, obj models.SchemaObject) (models.TranslationResult, error) {
	if s.translator == nil {
		return s.fallback.Translate([]models.SchemaObject{obj}, s.config.SourceDialect, s.config.TargetDialect), nil
	}
	return s.translator.TranslateOne(ctx, systemPrompt, obj)
}

// reattachSourceDDL reanexa o DDL de origem aos objetos traduzidos, para
// exibição lado a lado nos resultados. O casamento é feito em três níveis:
// identidade completa (kind|schema|name), depois (kind|name), depois
// (kind|nome sem qualificador). No nível mais fraco o primeiro candidato
// vence e uma nota de ambiguidade é registrada quando há mais de um.
func (s *MigrationService) reattachSourceDDL(translation *models.TranslationResult, objects []models.SchemaObject) {
	full := make(map[string]string, len(objects))
	byName := make(map[string]string, len(objects))
	bare := make(map[string][]string, len(objects))

	for _, obj := range objects {
		kind := strings.ToUpper(string(obj.Kind))
		name := strings.ToUpper(obj.Name)
		full[kind+"|"+strings.ToUpper(obj.Schema)+"|"+name] = obj.SourceDDL
		if _, ok := byName[kind+"|"+name]; !ok {
			byName[kind+"|"+name] = obj.SourceDDL
		}
		bareName := name
		if idx := strings.LastIndex(bareName, "."); idx >= 0 {
			bareName = bareName[idx+1:]
		}
		bare[kind+"|"+bareName] = append(bare[kind+"|"+bareName], obj.SourceDDL)
	}

	for i := range translation.Objects {
		t := &translation.Objects[i]
		if t.SourceDDL != "" {
			continue
		}
		kind := strings.ToUpper(string(t.Kind))
		name := strings.ToUpper(t.Name)

		if ddl, ok := full[kind+"|"+strings.ToUpper(t.Schema)+"|"+name]; ok {
			t.SourceDDL = ddl
			continue
		}
		if ddl, ok := byName[kind+"|"+name]; ok {
			t.SourceDDL = ddl
			continue
		}
		bareName := name
		if idx := strings.LastIndex(bareName, "."); idx >= 0 {
			bareName = bareName[idx+1:]
		}
		if ddls, ok := bare[kind+"|"+bareName]; ok && len(ddls) > 0 {
			t.SourceDDL = ddls[0]
			if len(ddls) > 1 {
				t.Notes = append(t.Notes, fmt.Sprintf("DDL de origem ambíguo para %s; usando o primeiro candidato", t.Name))
			}
		}
	}
}

// failRun registra a falha no histórico e finaliza o estado como falho
func (s *MigrationService) failRun(ctx context.Context, runID, message string, translation *models.TranslationResult, creation *models.CreationResult, totalObjects int, dryRun bool) {
	s.recordRun(ctx, models.MigrationRunRecord{
		RunID:         runID,
		Status:        models.RunStatusFailedStructure,
		SourceDialect: s.config.SourceDialect,
		TargetDialect: s.config.TargetDialect,
		CompletedAt:   time.Now().Unix(),
		TotalObjects:  totalObjects,
		DryRun:        dryRun,
		ErrorMessage:  message,
	}, false)
	s.state.FinishFailure(message, translation, creation)
}

// recordRun persiste o registro de execução, ignorando falhas do store para
// não derrubar a migração por indisponibilidade do histórico
func (s *MigrationService) recordRun(ctx context.Context, record models.MigrationRunRecord, create bool) {
	if s.runStore == nil {
		return
	}
	var err error
	if create {
		err = s.runStore.CreateRun(ctx, record)
	} else {
		err = s.runStore.UpdateRun(ctx, record)
	}
	if err != nil {
		log.Printf("[Migration] Erro ao registrar execução %s no histórico: %v", record.RunID, err)
	}
}
