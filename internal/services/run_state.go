package services

import (
	"sync"
	"time"

	"github.com/prefeitura-rio/app-migracao-schema/internal/models"
)

// RunState é o estado de processo da execução de migração, único por
// instância do serviço. Modelado como objeto próprio passado por
// referência, em vez de variáveis globais; a invariante de execução única
// é garantida pela guarda de TryStart sob o mesmo lock que a ativa.
type RunState struct {
	mu           sync.Mutex
	running      bool
	done         bool
	runID        string
	dryRun       bool
	startedAt    int64
	completedAt  int64
	totalObjects int
	errorMessage string
	translation  *models.TranslationResult
	creation     *models.CreationResult
	progress     models.ProgressState
}

// NewRunState cria o estado inicial (idle)
func NewRunState() *RunState {
	return &RunState{progress: models.InitialProgress()}
}

// TryStart ativa uma nova execução. Retorna false se já houver uma execução
// em andamento; nesse caso nada é mutado, nem mesmo o progresso.
func (s *RunState) TryStart(runID string, totalObjects int, dryRun bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}

	s.running = true
	s.done = false
	s.runID = runID
	s.dryRun = dryRun
	s.startedAt = time.Now().Unix()
	s.completedAt = 0
	s.totalObjects = totalObjects
	s.errorMessage = ""
	s.translation = nil
	s.creation = nil
	s.progress = models.InitialProgress()

	return true
}

// SetProgress avança o progresso. Percentuais menores que o atual são
// ignorados: o percentual é monotônico dentro de uma execução.
func (s *RunState) SetProgress(percent int, phase string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || percent < s.progress.Percent {
		return
	}
	if percent > 100 {
		percent = 100
	}
	s.progress = models.ProgressState{Percent: percent, Phase: phase}
}

// FinishSuccess finaliza a execução como concluída, guardando os resultados
// para serem servidos de forma idempotente até um reset explícito
func (s *RunState) FinishSuccess(translation *models.TranslationResult, creation *models.CreationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.done = true
	s.completedAt = time.Now().Unix()
	s.translation = translation
	s.creation = creation
	s.progress = models.ProgressState{Percent: 100, Phase: "Structure migration completed"}
}

// FinishFailure finaliza a execução como falha. Os resultados parciais são
// retidos para diagnóstico e o progresso volta ao estado inicial, para que
// um poll subsequente não mostre progresso obsoleto.
func (s *RunState) FinishFailure(message string, translation *models.TranslationResult, creation *models.CreationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.done = false
	s.errorMessage = message
	s.completedAt = time.Now().Unix()
	s.translation = translation
	s.creation = creation
	s.progress = models.InitialProgress()
}

// Reset descarta a execução armazenada. Falha se houver execução em andamento.
func (s *RunState) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrResetWhileRunning
	}

	// Campo a campo: sobrescrever a struct inteira sobrescreveria o mutex
	// que este método segura
	s.done = false
	s.runID = ""
	s.dryRun = false
	s.startedAt = 0
	s.completedAt = 0
	s.totalObjects = 0
	s.errorMessage = ""
	s.translation = nil
	s.creation = nil
	s.progress = models.InitialProgress()
	return nil
}

// IsRunning informa se há execução em andamento
func (s *RunState) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// IsDone informa se há execução concluída com resultados armazenados
func (s *RunState) IsDone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Snapshot retorna a visão atual do estado para o poll de status
func (s *RunState) Snapshot() models.MigrationStatusResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.MigrationStatusResponse{
		Status:       s.statusLocked(),
		RunID:        s.runID,
		Running:      s.running,
		Done:         s.done,
		Progress:     s.progress,
		StartedAt:    s.startedAt,
		CompletedAt:  s.completedAt,
		TotalObjects: s.totalObjects,
		DryRun:       s.dryRun,
		ErrorMessage: s.errorMessage,
	}
}

// Results retorna os resultados armazenados da última execução
func (s *RunState) Results() models.MigrationResultsResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.MigrationResultsResponse{
		Status:      s.statusLocked(),
		RunID:       s.runID,
		Translation: s.translation,
		Creation:    s.creation,
		Error:       s.errorMessage,
	}
}

func (s *RunState) statusLocked() models.MigrationStatus {
	switch {
	case s.running:
		return models.MigrationStatusInProgress
	case s.done:
		return models.MigrationStatusCompleted
	case s.errorMessage != "":
		return models.MigrationStatusFailed
	default:
		return models.MigrationStatusIdle
	}
}
