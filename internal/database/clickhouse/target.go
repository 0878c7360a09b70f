// Package clickhouse aplica o DDL traduzido em um servidor ClickHouse via
// o protocolo MySQL exposto pelo ClickHouse (porta 9004 por padrão).
package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/prefeitura-rio/app-migracao-schema/internal/models"
)

// Target cria objetos no banco de destino a partir do DDL traduzido
type Target struct {
	db     *sql.DB
	config Config
}

// Config contém a configuração de conexão com o destino
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// NewTarget cria o adaptador de destino
func NewTarget(cfg Config) (*Target, error) {
	if cfg.Port == 0 {
		cfg.Port = 9004
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?interpolateParams=true&multiStatements=false",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir conexão com o destino: %w", err)
	}

	return &Target{db: db, config: cfg}, nil
}

// Connect valida a conexão com o destino
func (t *Target) Connect(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// Close libera a conexão com o destino
func (t *Target) Close() error {
	if t.db != nil {
		return t.db.Close()
	}
	return nil
}

// CreateObjects executa o DDL de cada objeto traduzido no destino. Falhas
// individuais são acumuladas por objeto; objetos já existentes não são
// considerados erro.
func (t *Target) CreateObjects(ctx context.Context, objects []models.TranslatedObject) models.CreationResult {
	result := models.CreationResult{OK: true}
	created := 0

	for _, obj := range objects {
		statements := splitStatements(obj.TargetSQL)
		if len(statements) == 0 {
			continue
		}

		failed := false
		for _, stmt := range statements {
			if _, err := t.db.ExecContext(ctx, stmt); err != nil {
				if strings.Contains(strings.ToLower(err.Error()), "already exists") {
					log.Printf("[Target] Objeto %s já existe; ignorando", obj.Name)
					continue
				}
				log.Printf("[Target] Erro ao criar %s %s: %v", obj.Kind, obj.Name, err)
				result.Errors = append(result.Errors, models.CreationError{
					Object: obj.Name,
					Error:  err.Error(),
				})
				failed = true
				break
			}
		}

		if !failed {
			created++
		}
	}

	if len(result.Errors) > 0 {
		result.OK = false
		result.Message = fmt.Sprintf("%d de %d objetos criados; %d falharam",
			created, len(objects), len(result.Errors))
		return result
	}

	result.Message = fmt.Sprintf("%d objetos criados no destino", created)
	return result
}

// splitStatements divide um bloco de DDL em comandos individuais, respeitando
// aspas simples, duplas e backticks. Comandos vazios ou só de comentário de
// linha são descartados.
func splitStatements(ddl string) []string {
	var statements []string
	var b strings.Builder
	var quote byte

	for i := 0; i < len(ddl); i++ {
		c := ddl[i]
		switch {
		case quote != 0:
			b.WriteByte(c)
			if c == quote {
				// Aspas duplicadas são escape dentro do literal
				if i+1 < len(ddl) && ddl[i+1] == quote {
					b.WriteByte(quote)
					i++
					continue
				}
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
			b.WriteByte(c)
		case c == ';':
			if stmt := cleanStatement(b.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}

	if stmt := cleanStatement(b.String()); stmt != "" {
		statements = append(statements, stmt)
	}

	return statements
}

func cleanStatement(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if stmt == "" {
		return ""
	}

	for _, line := range strings.Split(stmt, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return stmt
		}
	}
	return ""
}
