package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prefeitura-rio/app-migracao-schema/internal/models"
	"github.com/prefeitura-rio/app-migracao-schema/internal/translator"
)

type fakeGateway struct {
	mu         sync.Mutex
	calls      int
	inFlight   int
	maxFlight  int
	failFor    map[string]error
	blockUntil chan struct{}
}

func (g *fakeGateway) TranslateOne(ctx context.Context, systemPrompt string, obj models.SchemaObject) (models.TranslationResult, error) {
	g.mu.Lock()
	g.calls++
	g.inFlight++
	if g.inFlight > g.maxFlight {
		g.maxFlight = g.inFlight
	}
	block := g.blockUntil
	err := g.failFor[obj.Name]
	g.mu.Unlock()

	if block != nil {
		<-block
	}

	defer func() {
		g.mu.Lock()
		g.inFlight--
		g.mu.Unlock()
	}()

	if err != nil {
		return models.TranslationResult{}, err
	}
	return models.TranslationResult{
		Objects: []models.TranslatedObject{{
			Name:      obj.Name,
			Kind:      obj.Kind,
			Schema:    obj.Schema,
			TargetSQL: "CREATE TABLE `" + obj.Name + "` (`ID` Int64)",
		}},
		Warnings: []string{},
	}, nil
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fakeTarget struct {
	mu      sync.Mutex
	calls   int
	objects []models.TranslatedObject
	result  models.CreationResult
}

func (t *fakeTarget) CreateObjects(ctx context.Context, objects []models.TranslatedObject) models.CreationResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	t.objects = append(t.objects, objects...)
	return t.result
}

type fakeRunStore struct {
	mu      sync.Mutex
	created []models.MigrationRunRecord
	updated []models.MigrationRunRecord
}

func (s *fakeRunStore) CreateRun(ctx context.Context, record models.MigrationRunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, record)
	return nil
}

func (s *fakeRunStore) UpdateRun(ctx context.Context, record models.MigrationRunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, record)
	return nil
}

func (s *fakeRunStore) ListRuns(ctx context.Context, page, perPage int) (models.MigrationHistoryResponse, error) {
	return models.MigrationHistoryResponse{}, nil
}

func extractionWithTables(n int) *ExtractionService {
	extraction := NewExtractionService(nil)
	result := &models.ExtractionResult{}
	for i := 1; i <= n; i++ {
		result.Tables = append(result.Tables, models.SchemaObject{
			Name:      fmt.Sprintf("T_%d", i),
			Kind:      models.ObjectKindTable,
			Schema:    "HR",
			SourceDDL: fmt.Sprintf(`CREATE TABLE "HR"."T_%d" ("ID" NUMBER)`, i),
		})
	}
	extraction.SetResult(result)
	return extraction
}

func waitForCompletion(t *testing.T, svc *MigrationService) models.MigrationStatusResponse {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap := svc.Status()
		if !snap.Running && (snap.Done || snap.ErrorMessage != "") {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("migração não concluiu no prazo")
	return models.MigrationStatusResponse{}
}

func TestStartMigrationPreconditions(t *testing.T) {
	fallback := translator.NewFallbackTranslator(nil)

	svc := NewMigrationService(MigrationConfig{}, NewExtractionService(nil), nil, fallback, &fakeTarget{}, nil)
	if _, err := svc.StartMigration(models.MigrationStartRequest{}); !errors.Is(err, ErrExtractionMissing) {
		t.Errorf("sem extração: err = %v, want ErrExtractionMissing", err)
	}

	svc = NewMigrationService(MigrationConfig{}, extractionWithTables(0), nil, fallback, &fakeTarget{}, nil)
	if _, err := svc.StartMigration(models.MigrationStartRequest{}); !errors.Is(err, ErrExtractionEmpty) {
		t.Errorf("extração vazia: err = %v, want ErrExtractionEmpty", err)
	}

	svc = NewMigrationService(MigrationConfig{}, extractionWithTables(1), nil, fallback, nil, nil)
	if _, err := svc.StartMigration(models.MigrationStartRequest{}); !errors.Is(err, ErrNoTarget) {
		t.Errorf("sem destino: err = %v, want ErrNoTarget", err)
	}
}

func TestMigrationCompletes(t *testing.T) {
	gateway := &fakeGateway{}
	target := &fakeTarget{result: models.CreationResult{OK: true, Message: "12 objetos criados"}}
	store := &fakeRunStore{}
	svc := NewMigrationService(MigrationConfig{BatchSize: 5}, extractionWithTables(12),
		gateway, translator.NewFallbackTranslator(nil), target, store)

	snap, err := svc.StartMigration(models.MigrationStartRequest{})
	if err != nil {
		t.Fatalf("StartMigration retornou erro: %v", err)
	}
	if !snap.Running || snap.TotalObjects != 12 {
		t.Errorf("snapshot inicial inesperado: %+v", snap)
	}

	final := waitForCompletion(t, svc)
	if final.Status != models.MigrationStatusCompleted {
		t.Fatalf("Status = %q, want %q (erro: %s)", final.Status, models.MigrationStatusCompleted, final.ErrorMessage)
	}
	if final.Progress.Percent != 100 {
		t.Errorf("Percent = %d, want 100", final.Progress.Percent)
	}

	if gateway.callCount() != 12 {
		t.Errorf("gateway chamado %d vezes, want 12", gateway.callCount())
	}
	if gateway.maxFlight > 5 {
		t.Errorf("concorrência %d excedeu o tamanho do lote", gateway.maxFlight)
	}
	if len(target.objects) != 12 {
		t.Errorf("destino recebeu %d objetos, want 12", len(target.objects))
	}

	results := svc.Results()
	if results.Translation == nil || len(results.Translation.Objects) != 12 {
		t.Fatalf("tradução armazenada inesperada: %+v", results.Translation)
	}
	for _, obj := range results.Translation.Objects {
		if obj.SourceDDL == "" {
			t.Errorf("objeto %s sem DDL de origem reanexado", obj.Name)
		}
	}
	if results.Creation == nil || !results.Creation.OK {
		t.Errorf("resultado de criação inesperado: %+v", results.Creation)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.created) != 1 || store.created[0].Status != models.RunStatusStructureInProgress {
		t.Errorf("registro inicial inesperado: %+v", store.created)
	}
	last := store.updated[len(store.updated)-1]
	if last.Status != models.RunStatusStructureComplete || last.TranslatedObjects != 12 {
		t.Errorf("registro final inesperado: %+v", last)
	}
}

func TestMigrationFallbackSubstitution(t *testing.T) {
	gateway := &fakeGateway{failFor: map[string]error{
		"T_2": &translator.GatewayError{Attempts: 3, Err: errors.New("indisponível")},
	}}
	target := &fakeTarget{result: models.CreationResult{OK: true}}
	svc := NewMigrationService(MigrationConfig{}, extractionWithTables(3),
		gateway, translator.NewFallbackTranslator(nil), target, nil)

	if _, err := svc.StartMigration(models.MigrationStartRequest{}); err != nil {
		t.Fatalf("StartMigration retornou erro: %v", err)
	}
	waitForCompletion(t, svc)

	results := svc.Results()
	if len(results.Translation.Objects) != 3 {
		t.Fatalf("tradução deveria cobrir todos os objetos: %d", len(results.Translation.Objects))
	}

	var substituted *models.TranslatedObject
	for i := range results.Translation.Objects {
		if results.Translation.Objects[i].Name == "T_2" {
			substituted = &results.Translation.Objects[i]
		}
	}
	if substituted == nil {
		t.Fatal("objeto com falha de gateway ausente do resultado")
	}
	if !strings.Contains(substituted.TargetSQL, "ENGINE = MergeTree") {
		t.Errorf("objeto substituído deveria vir do fallback determinístico:\n%s", substituted.TargetSQL)
	}

	warnings := strings.Join(results.Translation.Warnings, "; ")
	if !strings.Contains(warnings, "objeto T_2 traduzido pelo fallback local") {
		t.Errorf("aviso de substituição ausente: %q", warnings)
	}
}

func TestMigrationDryRunSkipsTarget(t *testing.T) {
	gateway := &fakeGateway{}
	store := &fakeRunStore{}
	svc := NewMigrationService(MigrationConfig{}, extractionWithTables(2),
		gateway, translator.NewFallbackTranslator(nil), nil, store)

	snap, err := svc.StartMigration(models.MigrationStartRequest{DryRun: true})
	if err != nil {
		t.Fatalf("dry-run sem destino deveria ser permitido: %v", err)
	}
	if !snap.DryRun {
		t.Errorf("snapshot deveria indicar dry-run: %+v", snap)
	}

	final := waitForCompletion(t, svc)
	if final.Status != models.MigrationStatusCompleted {
		t.Fatalf("Status = %q (erro: %s)", final.Status, final.ErrorMessage)
	}

	results := svc.Results()
	if results.Creation != nil {
		t.Errorf("dry-run não deveria ter resultado de criação: %+v", results.Creation)
	}
	if len(results.Translation.Objects) != 2 {
		t.Errorf("tradução deveria ocorrer normalmente: %d objetos", len(results.Translation.Objects))
	}
}

func TestMigrationCreationFailure(t *testing.T) {
	gateway := &fakeGateway{}
	target := &fakeTarget{result: models.CreationResult{
		OK:     false,
		Errors: []models.CreationError{{Object: "T_1", Error: "sintaxe inválida"}},
	}}
	svc := NewMigrationService(MigrationConfig{}, extractionWithTables(1),
		gateway, translator.NewFallbackTranslator(nil), target, nil)

	if _, err := svc.StartMigration(models.MigrationStartRequest{}); err != nil {
		t.Fatalf("StartMigration retornou erro: %v", err)
	}
	final := waitForCompletion(t, svc)

	if final.Status != models.MigrationStatusFailed {
		t.Fatalf("Status = %q, want %q", final.Status, models.MigrationStatusFailed)
	}
	if !strings.Contains(final.ErrorMessage, "T_1") || !strings.Contains(final.ErrorMessage, "sintaxe inválida") {
		t.Errorf("mensagem de erro sem detalhe da falha: %q", final.ErrorMessage)
	}

	results := svc.Results()
	if results.Translation == nil || results.Creation == nil {
		t.Errorf("resultados parciais deveriam ser retidos para diagnóstico: %+v", results)
	}
}

func TestStartMigrationSingleRun(t *testing.T) {
	block := make(chan struct{})
	gateway := &fakeGateway{blockUntil: block}
	target := &fakeTarget{result: models.CreationResult{OK: true}}
	svc := NewMigrationService(MigrationConfig{}, extractionWithTables(1),
		gateway, translator.NewFallbackTranslator(nil), target, nil)

	if _, err := svc.StartMigration(models.MigrationStartRequest{}); err != nil {
		t.Fatalf("primeira migração falhou: %v", err)
	}

	snap, err := svc.StartMigration(models.MigrationStartRequest{})
	if !errors.Is(err, ErrMigrationInProgress) {
		t.Errorf("segunda migração: err = %v, want ErrMigrationInProgress", err)
	}
	if !snap.Running {
		t.Errorf("snapshot da rejeição deveria refletir a execução ativa: %+v", snap)
	}

	close(block)
	waitForCompletion(t, svc)
}

func TestStartMigrationIdempotentWhenDone(t *testing.T) {
	gateway := &fakeGateway{}
	target := &fakeTarget{result: models.CreationResult{OK: true}}
	svc := NewMigrationService(MigrationConfig{}, extractionWithTables(1),
		gateway, translator.NewFallbackTranslator(nil), target, nil)

	if _, err := svc.StartMigration(models.MigrationStartRequest{}); err != nil {
		t.Fatalf("StartMigration retornou erro: %v", err)
	}
	waitForCompletion(t, svc)
	callsAfterFirst := gateway.callCount()

	snap, err := svc.StartMigration(models.MigrationStartRequest{})
	if err != nil {
		t.Fatalf("reenvio após conclusão não deveria falhar: %v", err)
	}
	if snap.Status != models.MigrationStatusCompleted {
		t.Errorf("Status = %q, want %q", snap.Status, models.MigrationStatusCompleted)
	}
	if gateway.callCount() != callsAfterFirst {
		t.Error("reenvio após conclusão não deveria iniciar nova execução")
	}

	if err := svc.Reset(); err != nil {
		t.Fatalf("Reset falhou: %v", err)
	}
	if _, err := svc.StartMigration(models.MigrationStartRequest{}); err != nil {
		t.Errorf("nova migração após reset falhou: %v", err)
	}
	waitForCompletion(t, svc)
}

func TestReattachSourceDDL(t *testing.T) {
	svc := NewMigrationService(MigrationConfig{}, NewExtractionService(nil),
		nil, translator.NewFallbackTranslator(nil), nil, nil)

	objects := []models.SchemaObject{
		{Name: "EMP", Kind: models.ObjectKindTable, Schema: "HR", SourceDDL: "DDL_HR_EMP"},
		{Name: "EMP", Kind: models.ObjectKindTable, Schema: "RH", SourceDDL: "DDL_RH_EMP"},
		{Name: "DEPT", Kind: models.ObjectKindTable, Schema: "HR", SourceDDL: "DDL_DEPT"},
		{Name: "V_EMP", Kind: models.ObjectKindView, Schema: "HR", SourceDDL: "DDL_VIEW"},
	}

	translation := &models.TranslationResult{Objects: []models.TranslatedObject{
		// casamento completo kind|schema|name
		{Name: "EMP", Kind: models.ObjectKindTable, Schema: "RH", TargetSQL: "x"},
		// casamento por kind|name sem schema
		{Name: "dept", Kind: models.ObjectKindTable, TargetSQL: "x"},
		// casamento por nome sem qualificador, ambíguo entre os dois EMP
		{Name: "OUTRO.EMP", Kind: models.ObjectKindTable, TargetSQL: "x"},
		// DDL já presente é preservado
		{Name: "V_EMP", Kind: models.ObjectKindView, Schema: "HR", TargetSQL: "x", SourceDDL: "JA_PRESENTE"},
		// sem candidato: fica vazio
		{Name: "INEXISTENTE", Kind: models.ObjectKindTable, TargetSQL: "x"},
	}}

	svc.reattachSourceDDL(translation, objects)

	got := translation.Objects
	if got[0].SourceDDL != "DDL_RH_EMP" {
		t.Errorf("casamento completo: SourceDDL = %q, want DDL_RH_EMP", got[0].SourceDDL)
	}
	if got[1].SourceDDL != "DDL_DEPT" {
		t.Errorf("casamento por nome: SourceDDL = %q, want DDL_DEPT", got[1].SourceDDL)
	}
	if got[2].SourceDDL != "DDL_HR_EMP" {
		t.Errorf("casamento sem qualificador deveria usar o primeiro candidato: %q", got[2].SourceDDL)
	}
	if len(got[2].Notes) != 1 || !strings.Contains(got[2].Notes[0], "ambíguo") {
		t.Errorf("nota de ambiguidade ausente: %v", got[2].Notes)
	}
	if got[3].SourceDDL != "JA_PRESENTE" {
		t.Errorf("DDL já presente foi sobrescrito: %q", got[3].SourceDDL)
	}
	if got[4].SourceDDL != "" {
		t.Errorf("objeto sem candidato deveria ficar sem DDL de origem: %q", got[4].SourceDDL)
	}
}
