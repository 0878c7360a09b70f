package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-migracao-schema/internal/translator"
)

// DependencyPinger valida a conectividade com uma dependência externa
type DependencyPinger interface {
	Connect(ctx context.Context) error
}

// HealthHandler gerencia os endpoints de health check
type HealthHandler struct {
	source  DependencyPinger
	target  DependencyPinger
	circuit *translator.CircuitBreaker
}

// NewHealthHandler cria um novo handler de health check. Dependências não
// configuradas podem ser nil e são omitidas das checagens.
func NewHealthHandler(source, target DependencyPinger, circuit *translator.CircuitBreaker) *HealthHandler {
	return &HealthHandler{
		source:  source,
		target:  target,
		circuit: circuit,
	}
}

// HealthResponse representa a resposta do health check
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Error     string            `json:"error,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

// Liveness godoc
// @Summary Liveness probe endpoint
// @Description Verifica se a aplicação está viva (sem checagem de dependências externas)
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /liveness [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "alive",
		Timestamp: time.Now().Unix(),
	})
}

// Readiness godoc
// @Summary Readiness probe endpoint
// @Description Verifica se a aplicação está pronta para receber tráfego
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /readiness [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	// A migração é disparada sob demanda; a aplicação está pronta assim que
	// o servidor sobe. Conectividade com os bancos é reportada em /health.
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ready",
		Timestamp: time.Now().Unix(),
	})
}

// Health godoc
// @Summary Comprehensive health check endpoint
// @Description Verifica a conectividade com os bancos de origem e destino e o estado do circuito de tradução
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Checks:    make(map[string]string),
		Timestamp: time.Now().Unix(),
	}

	if h.source != nil {
		if err := h.source.Connect(ctx); err != nil {
			response.Checks["source_database"] = "failed"
			response.Status = "unhealthy"
			response.Error = "banco de origem indisponível"
		} else {
			response.Checks["source_database"] = "ok"
		}
	}

	if h.target != nil {
		if err := h.target.Connect(ctx); err != nil {
			response.Checks["target_database"] = "failed"
			response.Status = "unhealthy"
			response.Error = "banco de destino indisponível"
		} else {
			response.Checks["target_database"] = "ok"
		}
	}

	if h.circuit != nil {
		if h.circuit.IsOpen() {
			response.Checks["translation_circuit"] = "open"
		} else {
			response.Checks["translation_circuit"] = "closed"
		}
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}
