package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prefeitura-rio/app-migracao-schema/internal/models"
	"github.com/prefeitura-rio/app-migracao-schema/internal/services"
)

// MigrationHandler gerencia operações de migração de estrutura
type MigrationHandler struct {
	migrationService *services.MigrationService
	validator        *validator.Validate
}

// NewMigrationHandler cria um novo handler de migração
func NewMigrationHandler(migrationService *services.MigrationService) *MigrationHandler {
	return &MigrationHandler{
		migrationService: migrationService,
		validator:        validator.New(),
	}
}

// StartMigration godoc
// @Summary Inicia uma migração de estrutura
// @Description Inicia a tradução e criação da estrutura no banco de destino em background. Se a última migração já foi concluída e não houve reset, retorna o resultado armazenado sem iniciar nova execução.
// @Tags migration
// @Accept json
// @Produce json
// @Param migration body models.MigrationStartRequest false "Opções da migração"
// @Success 200 {object} models.MigrationStatusResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 412 {object} map[string]string
// @Router /api/v1/admin/migration/start [post]
func (h *MigrationHandler) StartMigration(c *gin.Context) {
	var request models.MigrationStartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
			return
		}
		if err := h.validator.Struct(request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validação falhou: " + err.Error()})
			return
		}
	}

	response, err := h.migrationService.StartMigration(request)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMigrationInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "status": response})
		case errors.Is(err, services.ErrExtractionMissing), errors.Is(err, services.ErrExtractionEmpty), errors.Is(err, services.ErrNoTarget):
			c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetStatus godoc
// @Summary Obtém o status atual da migração
// @Description Retorna o status e o progresso da migração em andamento ou o último estado conhecido
// @Tags migration
// @Produce json
// @Success 200 {object} models.MigrationStatusResponse
// @Router /api/v1/admin/migration/status [get]
func (h *MigrationHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.migrationService.Status())
}

// GetResults godoc
// @Summary Obtém os resultados da última migração
// @Description Retorna os objetos traduzidos, com o DDL de origem lado a lado, e o resultado da criação no destino
// @Tags migration
// @Produce json
// @Success 200 {object} models.MigrationResultsResponse
// @Router /api/v1/admin/migration/results [get]
func (h *MigrationHandler) GetResults(c *gin.Context) {
	c.JSON(http.StatusOK, h.migrationService.Results())
}

// Reset godoc
// @Summary Descarta os resultados da última migração
// @Description Libera o estado armazenado, permitindo iniciar uma nova migração
// @Tags migration
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/admin/migration/reset [post]
func (h *MigrationHandler) Reset(c *gin.Context) {
	if err := h.migrationService.Reset(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Estado de migração reiniciado"})
}

// GetHistory godoc
// @Summary Lista o histórico de migrações
// @Description Retorna o histórico persistido de execuções com paginação
// @Tags migration
// @Produce json
// @Param page query int false "Página" default(1)
// @Param per_page query int false "Resultados por página" default(20)
// @Success 200 {object} models.MigrationHistoryResponse
// @Failure 500 {object} map[string]string
// @Router /api/v1/admin/migration/history [get]
func (h *MigrationHandler) GetHistory(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if err != nil || perPage < 1 || perPage > 100 {
		perPage = 20
	}

	response, err := h.migrationService.History(c.Request.Context(), page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}
