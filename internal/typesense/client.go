// Package typesense encapsula a criação do cliente Typesense usado para o
// histórico de execuções de migração.
package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/typesense/typesense-go/v3/typesense"

	"github.com/prefeitura-rio/app-migracao-schema/internal/config"
)

// NewClient cria o cliente Typesense a partir da configuração. Retorna nil
// quando o Typesense não está configurado; o histórico de execuções fica
// desabilitado nesse caso.
func NewClient(cfg *config.Config) *typesense.Client {
	if cfg.TypesenseHost == "" {
		return nil
	}

	return typesense.NewClient(
		typesense.WithServer(fmt.Sprintf("%s://%s:%s", cfg.TypesenseProtocol, cfg.TypesenseHost, cfg.TypesensePort)),
		typesense.WithAPIKey(cfg.TypesenseAPIKey),
	)
}

// CheckHealth verifica a conectividade com o servidor Typesense
func CheckHealth(ctx context.Context, client *typesense.Client) error {
	if client == nil {
		return fmt.Errorf("cliente Typesense não configurado")
	}

	_, err := client.Health(ctx, 2*time.Second)
	return err
}
