package services

import (
	"errors"
	"testing"

	"github.com/prefeitura-rio/app-migracao-schema/internal/models"
)

func TestRunStateTryStartGuard(t *testing.T) {
	state := NewRunState()

	if !state.TryStart("run-1", 10, false) {
		t.Fatal("primeira ativação deveria suceder")
	}
	if state.TryStart("run-2", 5, false) {
		t.Fatal("segunda ativação com execução em andamento deveria falhar")
	}

	snap := state.Snapshot()
	if snap.RunID != "run-1" || snap.TotalObjects != 10 {
		t.Errorf("ativação rejeitada não deveria mutar o estado: %+v", snap)
	}
	if snap.Status != models.MigrationStatusInProgress {
		t.Errorf("Status = %q, want %q", snap.Status, models.MigrationStatusInProgress)
	}
}

func TestRunStateProgressMonotonic(t *testing.T) {
	state := NewRunState()
	state.TryStart("run-1", 10, false)

	state.SetProgress(30, "Tradução concluída")
	state.SetProgress(10, "fase antiga")
	if p := state.Snapshot().Progress; p.Percent != 30 || p.Phase != "Tradução concluída" {
		t.Errorf("percentual menor não deveria regredir o progresso: %+v", p)
	}

	state.SetProgress(150, "acima do teto")
	if p := state.Snapshot().Progress; p.Percent != 100 {
		t.Errorf("percentual deveria ser limitado a 100: %+v", p)
	}
}

func TestRunStateProgressIgnoredWhenIdle(t *testing.T) {
	state := NewRunState()
	state.SetProgress(50, "sem execução")
	if p := state.Snapshot().Progress; p.Percent != 0 {
		t.Errorf("progresso sem execução ativa deveria ser ignorado: %+v", p)
	}
}

func TestRunStateFinishSuccess(t *testing.T) {
	state := NewRunState()
	state.TryStart("run-1", 1, false)

	translation := &models.TranslationResult{Warnings: []string{}}
	creation := &models.CreationResult{OK: true}
	state.FinishSuccess(translation, creation)

	snap := state.Snapshot()
	if snap.Running || !snap.Done {
		t.Errorf("execução deveria estar concluída: %+v", snap)
	}
	if snap.Status != models.MigrationStatusCompleted {
		t.Errorf("Status = %q, want %q", snap.Status, models.MigrationStatusCompleted)
	}
	if snap.Progress.Percent != 100 {
		t.Errorf("Percent = %d, want 100", snap.Progress.Percent)
	}

	results := state.Results()
	if results.Translation != translation || results.Creation != creation {
		t.Error("resultados armazenados deveriam ser servidos até o reset")
	}
}

func TestRunStateFinishFailureRetainsPartials(t *testing.T) {
	state := NewRunState()
	state.TryStart("run-1", 1, false)

	translation := &models.TranslationResult{}
	state.FinishFailure("falha no destino", translation, nil)

	snap := state.Snapshot()
	if snap.Status != models.MigrationStatusFailed {
		t.Errorf("Status = %q, want %q", snap.Status, models.MigrationStatusFailed)
	}
	if snap.Progress.Percent != 0 {
		t.Errorf("progresso deveria voltar ao estado inicial após falha: %+v", snap.Progress)
	}

	results := state.Results()
	if results.Translation != translation || results.Error != "falha no destino" {
		t.Errorf("resultados parciais deveriam ser retidos: %+v", results)
	}
}

func TestRunStateReset(t *testing.T) {
	state := NewRunState()
	state.TryStart("run-1", 1, false)

	if err := state.Reset(); !errors.Is(err, ErrResetWhileRunning) {
		t.Errorf("Reset durante execução: err = %v, want ErrResetWhileRunning", err)
	}

	state.FinishSuccess(&models.TranslationResult{}, nil)
	if err := state.Reset(); err != nil {
		t.Fatalf("Reset após conclusão falhou: %v", err)
	}
	if err := state.Reset(); err != nil {
		t.Fatalf("Reset repetido falhou: %v", err)
	}

	snap := state.Snapshot()
	if snap.Status != models.MigrationStatusIdle || snap.RunID != "" {
		t.Errorf("estado deveria voltar a idle após reset: %+v", snap)
	}
	if !state.TryStart("run-2", 1, false) {
		t.Error("nova execução deveria ser permitida após reset")
	}
}
