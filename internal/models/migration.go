package models

// MigrationStatus representa os possíveis estados de uma migração de estrutura
type MigrationStatus string

const (
	MigrationStatusIdle       MigrationStatus = "idle"
	MigrationStatusInProgress MigrationStatus = "in_progress"
	MigrationStatusCompleted  MigrationStatus = "completed"
	MigrationStatusFailed     MigrationStatus = "failed"
)

// RunStatus é o status persistido no histórico de execuções
type RunStatus string

const (
	RunStatusStructureInProgress RunStatus = "structure_in_progress"
	RunStatusStructureComplete   RunStatus = "structure_complete"
	RunStatusFailedStructure     RunStatus = "failed_structure"
)

// ProgressState representa o progresso observável de uma execução.
// Percent é monotonicamente não-decrescente dentro de uma execução.
type ProgressState struct {
	Percent int    `json:"percent"`
	Phase   string `json:"phase"`
}

// InitialProgress é o estado de progresso no início de uma execução e após falha
func InitialProgress() ProgressState {
	return ProgressState{Percent: 0, Phase: "Initializing"}
}

// CreationError representa a falha de criação de um objeto no destino
type CreationError struct {
	Object string `json:"object"`
	Error  string `json:"error"`
}

// CreationResult é o resultado da aplicação do DDL traduzido no banco de destino
type CreationResult struct {
	OK      bool            `json:"ok"`
	Errors  []CreationError `json:"errors,omitempty"`
	Message string          `json:"message,omitempty"`
}

// MigrationStartRequest representa uma solicitação de início de migração
type MigrationStartRequest struct {
	DryRun bool `json:"dry_run,omitempty"`
}

// MigrationStatusResponse representa a resposta de status de migração
type MigrationStatusResponse struct {
	Status       MigrationStatus `json:"status"`
	RunID        string          `json:"run_id,omitempty"`
	Running      bool            `json:"running"`
	Done         bool            `json:"done"`
	Progress     ProgressState   `json:"progress"`
	StartedAt    int64           `json:"started_at,omitempty"`
	CompletedAt  int64           `json:"completed_at,omitempty"`
	TotalObjects int             `json:"total_objects,omitempty"`
	DryRun       bool            `json:"dry_run,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// MigrationResultsResponse representa os resultados armazenados de uma execução
type MigrationResultsResponse struct {
	Status      MigrationStatus    `json:"status"`
	RunID       string             `json:"run_id,omitempty"`
	Translation *TranslationResult `json:"translation,omitempty"`
	Creation    *CreationResult    `json:"creation,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// MigrationRunRecord representa uma execução no histórico persistido
type MigrationRunRecord struct {
	ID                string    `json:"id,omitempty"`
	RunID             string    `json:"run_id"`
	Status            RunStatus `json:"status"`
	SourceDialect     string    `json:"source_dialect"`
	TargetDialect     string    `json:"target_dialect"`
	StartedAt         int64     `json:"started_at"`
	CompletedAt       int64     `json:"completed_at,omitempty"`
	TotalObjects      int       `json:"total_objects"`
	TranslatedObjects int       `json:"translated_objects"`
	DryRun            bool      `json:"dry_run"`
	ErrorMessage      string    `json:"error_message,omitempty"`
}

// MigrationHistoryResponse representa a resposta de histórico de execuções
type MigrationHistoryResponse struct {
	Found int                  `json:"found"`
	Page  int                  `json:"page"`
	Runs  []MigrationRunRecord `json:"runs"`
}

// ExtractionStatusResponse representa o estado da extração de schema
type ExtractionStatusResponse struct {
	Extracted bool  `json:"extracted"`
	Sequences int   `json:"sequences"`
	Tables    int   `json:"tables"`
	Views     int   `json:"views"`
	Total     int   `json:"total"`
	UpdatedAt int64 `json:"updated_at,omitempty"`
}
