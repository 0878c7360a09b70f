package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-migracao-schema/internal/models"
	"github.com/prefeitura-rio/app-migracao-schema/internal/services"
)

// ExtractionHandler gerencia a extração de schema do banco de origem
type ExtractionHandler struct {
	extractionService *services.ExtractionService
}

// NewExtractionHandler cria um novo handler de extração
func NewExtractionHandler(extractionService *services.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

// RunExtraction godoc
// @Summary Extrai o schema do banco de origem
// @Description Conecta ao banco de origem e extrai sequências, tabelas e views com seus DDLs. O resultado fica armazenado como insumo da migração.
// @Tags extraction
// @Produce json
// @Success 200 {object} models.ExtractionStatusResponse
// @Failure 412 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/admin/extraction/run [post]
func (h *ExtractionHandler) RunExtraction(c *gin.Context) {
	_, err := h.extractionService.Run(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoSource) {
			c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.extractionService.Status())
}

// GetStatus godoc
// @Summary Obtém o estado atual da extração
// @Description Retorna as contagens de objetos do último schema extraído
// @Tags extraction
// @Produce json
// @Success 200 {object} models.ExtractionStatusResponse
// @Router /api/v1/admin/extraction/status [get]
func (h *ExtractionHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.extractionService.Status())
}

// LoadSchema godoc
// @Summary Carrega um schema extraído externamente
// @Description Recebe sequências, tabelas e views com DDLs já extraídos, para migrações sem acesso direto ao banco de origem
// @Tags extraction
// @Accept json
// @Produce json
// @Param schema body models.ExtractionResult true "Schema extraído"
// @Success 200 {object} models.ExtractionStatusResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/admin/extraction/load [post]
func (h *ExtractionHandler) LoadSchema(c *gin.Context) {
	var result models.ExtractionResult
	if err := c.ShouldBindJSON(&result); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	if result.Total() == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "schema vazio: nenhum objeto informado"})
		return
	}

	h.extractionService.SetResult(&result)
	c.JSON(http.StatusOK, h.extractionService.Status())
}
