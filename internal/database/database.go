// Package database contém os adaptadores de banco de origem e destino.
package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/prefeitura-rio/app-migracao-schema/internal/database/clickhouse"
	"github.com/prefeitura-rio/app-migracao-schema/internal/database/oracle"
	"github.com/prefeitura-rio/app-migracao-schema/internal/models"
)

// SchemaExtractor é a interface unificada dos extratores de schema de origem
type SchemaExtractor interface {
	Connect(ctx context.Context) error
	Close() error
	ExtractSchema(ctx context.Context) (*models.ExtractionResult, error)
}

// ObjectCreator é a interface unificada dos adaptadores de destino
type ObjectCreator interface {
	Connect(ctx context.Context) error
	Close() error
	CreateObjects(ctx context.Context, objects []models.TranslatedObject) models.CreationResult
}

// Config contém a configuração unificada de conexão com banco
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
}

// NewSchemaExtractor cria um extrator para o dialeto de origem informado
func NewSchemaExtractor(dialect string, config Config) (SchemaExtractor, error) {
	dialect = strings.ToLower(strings.TrimSpace(dialect))

	switch dialect {
	case "oracle":
		cfg := oracle.Config{
			Host:        config.Host,
			Port:        config.Port,
			ServiceName: config.Database,
			Username:    config.Username,
			Password:    config.Password,
			Schema:      config.Schema,
		}
		return oracle.NewExtractor(cfg)

	default:
		return nil, fmt.Errorf("dialeto de origem não suportado: %s (suportado: oracle)", dialect)
	}
}

// NewObjectCreator cria um adaptador de destino para o dialeto informado
func NewObjectCreator(dialect string, config Config) (ObjectCreator, error) {
	dialect = strings.ToLower(strings.TrimSpace(dialect))

	switch dialect {
	case "clickhouse":
		cfg := clickhouse.Config{
			Host:     config.Host,
			Port:     config.Port,
			Database: config.Database,
			Username: config.Username,
			Password: config.Password,
		}
		return clickhouse.NewTarget(cfg)

	default:
		return nil, fmt.Errorf("dialeto de destino não suportado: %s (suportado: clickhouse)", dialect)
	}
}
