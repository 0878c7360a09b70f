package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-migracao-schema/internal/services"
)

// MigrationLockMiddleware bloqueia operações de escrita enquanto uma migração
// de estrutura está em andamento
type MigrationLockMiddleware struct {
	migrationService *services.MigrationService
}

// NewMigrationLockMiddleware cria um novo middleware de bloqueio de migração
func NewMigrationLockMiddleware(migrationService *services.MigrationService) *MigrationLockMiddleware {
	return &MigrationLockMiddleware{migrationService: migrationService}
}

// BlockWrites retorna um handler Gin que rejeita operações de escrita durante
// a migração, exceto as rotas de consulta de status e resultados
func (m *MigrationLockMiddleware) BlockWrites() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isWriteMethod(c.Request.Method) {
			c.Next()
			return
		}

		if m.migrationService.IsRunning() {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Sistema em manutenção",
				"message": "Uma migração de estrutura está em andamento. Operações de escrita estão temporariamente bloqueadas. Tente novamente em alguns minutos.",
				"code":    "MIGRATION_IN_PROGRESS",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// isWriteMethod verifica se o método HTTP é uma operação de escrita
func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
