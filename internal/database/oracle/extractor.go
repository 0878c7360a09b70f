package oracle

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	_ "github.com/sijms/go-ora/v2"

	"github.com/prefeitura-rio/app-migracao-schema/internal/models"
)

// Extractor extrai o schema de um banco Oracle via DBMS_METADATA
type Extractor struct {
	db     *sql.DB
	config Config
}

// Config contém a configuração de conexão com o Oracle
type Config struct {
	Host        string
	Port        int
	ServiceName string
	Username    string
	Password    string
	Schema      string
}

// NewExtractor cria um extrator Oracle (driver puro Go, sem CGO)
func NewExtractor(cfg Config) (*Extractor, error) {
	connStr := fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.ServiceName)

	db, err := sql.Open("oracle", connStr)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir conexão oracle: %w", err)
	}

	return &Extractor{db: db, config: cfg}, nil
}

// Connect valida a conexão e prepara as transformações de DDL da sessão
func (e *Extractor) Connect(ctx context.Context) error {
	if err := e.db.PingContext(ctx); err != nil {
		return err
	}

	// DDL sem terminador nem atributos de segmento; o restante das cláusulas
	// de armazenamento é removido na tradução
	_, err := e.db.ExecContext(ctx, `
		BEGIN
			DBMS_METADATA.SET_TRANSFORM_PARAM(DBMS_METADATA.SESSION_TRANSFORM, 'SQLTERMINATOR', FALSE);
			DBMS_METADATA.SET_TRANSFORM_PARAM(DBMS_METADATA.SESSION_TRANSFORM, 'SEGMENT_ATTRIBUTES', FALSE);
		END;`)
	if err != nil {
		log.Printf("[Extraction] Aviso: não foi possível configurar DBMS_METADATA: %v", err)
	}

	return nil
}

// Close libera a conexão com o banco
func (e *Extractor) Close() error {
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

// schemaOwner retorna o owner alvo da extração, usando o schema corrente
// quando nenhum foi configurado
func (e *Extractor) schemaOwner(ctx context.Context) (string, error) {
	if e.config.Schema != "" {
		return strings.ToUpper(e.config.Schema), nil
	}

	var owner string
	err := e.db.QueryRowContext(ctx,
		`SELECT SYS_CONTEXT('USERENV', 'CURRENT_SCHEMA') FROM DUAL`).Scan(&owner)
	if err != nil {
		return "", fmt.Errorf("erro ao determinar schema corrente: %w", err)
	}
	return owner, nil
}

// listObjects lista os nomes dos objetos de um tipo pertencentes ao owner
func (e *Extractor) listObjects(ctx context.Context, owner, objectType string) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT OBJECT_NAME
		FROM ALL_OBJECTS
		WHERE OWNER = :1 AND OBJECT_TYPE = :2
		AND OBJECT_NAME NOT LIKE 'BIN$%'
		ORDER BY OBJECT_NAME`, owner, objectType)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar objetos %s: %w", objectType, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// getDDL obtém o DDL de um objeto via DBMS_METADATA.GET_DDL
func (e *Extractor) getDDL(ctx context.Context, owner, objectType, name string) (string, error) {
	var ddl string
	err := e.db.QueryRowContext(ctx,
		`SELECT DBMS_METADATA.GET_DDL(:1, :2, :3) FROM DUAL`,
		objectType, name, owner).Scan(&ddl)
	if err != nil {
		return "", fmt.Errorf("erro ao obter DDL de %s %s.%s: %w", objectType, owner, name, err)
	}
	return strings.TrimSpace(ddl), nil
}

// extractKind extrai todos os objetos de um tipo com seus DDLs. Objetos cujo
// DDL não pôde ser obtido entram na lista com DDL vazio, para que a migração
// os reporte em vez de ignorá-los silenciosamente.
func (e *Extractor) extractKind(ctx context.Context, owner, objectType string, kind models.ObjectKind) ([]models.SchemaObject, error) {
	names, err := e.listObjects(ctx, owner, objectType)
	if err != nil {
		return nil, err
	}

	objects := make([]models.SchemaObject, 0, len(names))
	for _, name := range names {
		ddl, err := e.getDDL(ctx, owner, objectType, name)
		if err != nil {
			log.Printf("[Extraction] %v", err)
			ddl = ""
		}
		objects = append(objects, models.SchemaObject{
			Name:      name,
			Kind:      kind,
			Schema:    owner,
			SourceDDL: ddl,
		})
	}

	return objects, nil
}

// ExtractSchema extrai sequências, tabelas e views do schema configurado
func (e *Extractor) ExtractSchema(ctx context.Context) (*models.ExtractionResult, error) {
	owner, err := e.schemaOwner(ctx)
	if err != nil {
		return nil, err
	}

	result := &models.ExtractionResult{}

	result.Sequences, err = e.extractKind(ctx, owner, "SEQUENCE", models.ObjectKindSequence)
	if err != nil {
		return nil, err
	}

	result.Tables, err = e.extractKind(ctx, owner, "TABLE", models.ObjectKindTable)
	if err != nil {
		return nil, err
	}

	result.Views, err = e.extractKind(ctx, owner, "VIEW", models.ObjectKindView)
	if err != nil {
		return nil, err
	}

	return result, nil
}
