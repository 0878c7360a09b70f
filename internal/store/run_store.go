// Package store persiste o histórico de execuções de migração no Typesense.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v3/typesense"
	"github.com/typesense/typesense-go/v3/typesense/api"

	"github.com/prefeitura-rio/app-migracao-schema/internal/models"
)

const MigrationRunsCollection = "_migration_runs"

// TypesenseRunStore persiste registros de execução na collection _migration_runs
type TypesenseRunStore struct {
	client *typesense.Client
}

// NewTypesenseRunStore cria o store de histórico de execuções
func NewTypesenseRunStore(client *typesense.Client) *TypesenseRunStore {
	return &TypesenseRunStore{client: client}
}

func (s *TypesenseRunStore) ensureRunsCollection(ctx context.Context) error {
	_, err := s.client.Collection(MigrationRunsCollection).Retrieve(ctx)
	if err == nil {
		return nil
	}

	if strings.Contains(err.Error(), "404") || strings.Contains(err.Error(), "Not found") {
		schema := &api.CollectionSchema{
			Name: MigrationRunsCollection,
			Fields: []api.Field{
				{Name: "id", Type: "string", Optional: boolPtr(true)},
				{Name: "run_id", Type: "string", Facet: boolPtr(false)},
				{Name: "status", Type: "string", Facet: boolPtr(true)},
				{Name: "source_dialect", Type: "string", Facet: boolPtr(true)},
				{Name: "target_dialect", Type: "string", Facet: boolPtr(true)},
				{Name: "started_at", Type: "int64", Facet: boolPtr(false)},
				{Name: "completed_at", Type: "int64", Optional: boolPtr(true)},
				{Name: "total_objects", Type: "int32", Optional: boolPtr(true)},
				{Name: "translated_objects", Type: "int32", Optional: boolPtr(true)},
				{Name: "dry_run", Type: "bool", Optional: boolPtr(true)},
				{Name: "error_message", Type: "string", Optional: boolPtr(true)},
			},
			DefaultSortingField: stringPtr("started_at"),
		}

		_, err = s.client.Collections().Create(ctx, schema)
		if err != nil {
			return fmt.Errorf("erro ao criar collection %s: %v", MigrationRunsCollection, err)
		}
		return nil
	}

	return err
}

// CreateRun cria o registro de uma execução. O run_id é usado como id do
// documento para permitir atualizações subsequentes.
func (s *TypesenseRunStore) CreateRun(ctx context.Context, record models.MigrationRunRecord) error {
	if err := s.ensureRunsCollection(ctx); err != nil {
		return err
	}

	record.ID = record.RunID
	recordMap := structToMapRun(record)

	_, err := s.client.Collection(MigrationRunsCollection).Documents().Create(ctx, recordMap, &api.DocumentIndexParameters{})
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return s.UpdateRun(ctx, record)
		}
		return fmt.Errorf("erro ao criar registro de execução: %v", err)
	}

	return nil
}

// UpdateRun atualiza o registro de uma execução existente
func (s *TypesenseRunStore) UpdateRun(ctx context.Context, record models.MigrationRunRecord) error {
	record.ID = record.RunID
	recordMap := structToMapRun(record)

	_, err := s.client.Collection(MigrationRunsCollection).Document(record.RunID).Update(ctx, recordMap, &api.DocumentIndexParameters{})
	if err != nil {
		if strings.Contains(err.Error(), "404") || strings.Contains(err.Error(), "Not found") {
			return s.CreateRun(ctx, record)
		}
		return fmt.Errorf("erro ao atualizar registro de execução: %v", err)
	}

	return nil
}

// ListRuns retorna o histórico de execuções, mais recentes primeiro
func (s *TypesenseRunStore) ListRuns(ctx context.Context, page, perPage int) (models.MigrationHistoryResponse, error) {
	if err := s.ensureRunsCollection(ctx); err != nil {
		return models.MigrationHistoryResponse{}, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	searchParams := &api.SearchCollectionParams{
		Q:       stringPtr("*"),
		Page:    intPtr(page),
		PerPage: intPtr(perPage),
		SortBy:  stringPtr("started_at:desc"),
	}

	result, err := s.client.Collection(MigrationRunsCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return models.MigrationHistoryResponse{}, fmt.Errorf("erro ao consultar histórico de execuções: %v", err)
	}

	jsonData, _ := json.Marshal(result)
	var resultMap map[string]interface{}
	json.Unmarshal(jsonData, &resultMap)

	runs := []models.MigrationRunRecord{}
	if hits, ok := resultMap["hits"].([]interface{}); ok {
		for _, hit := range hits {
			if hitMap, ok := hit.(map[string]interface{}); ok {
				if doc, ok := hitMap["document"].(map[string]interface{}); ok {
					docBytes, _ := json.Marshal(doc)
					var record models.MigrationRunRecord
					json.Unmarshal(docBytes, &record)
					runs = append(runs, record)
				}
			}
		}
	}

	found := 0
	if foundFloat, ok := resultMap["found"].(float64); ok {
		found = int(foundFloat)
	}

	return models.MigrationHistoryResponse{
		Found: found,
		Page:  page,
		Runs:  runs,
	}, nil
}

// structToMapRun converte uma struct para map[string]interface{} para indexação
func structToMapRun(v interface{}) map[string]interface{} {
	data, _ := json.Marshal(v)
	var result map[string]interface{}
	json.Unmarshal(data, &result)
	return result
}

func stringPtr(s string) *string { return &s }
func intPtr(i int) *int          { return &i }
func boolPtr(b bool) *bool       { return &b }
