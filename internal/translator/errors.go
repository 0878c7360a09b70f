package translator

import (
	"errors"
	"fmt"
)

var (
	ErrCircuitOpen   = errors.New("circuito aberto: serviço de tradução temporariamente suspenso")
	ErrEmptyResponse = errors.New("resposta vazia do serviço de tradução")
	ErrNoClient      = errors.New("cliente Gemini não inicializado")
)

// ShapeError indica que a saída do tradutor não segue o contrato esperado.
// Nunca é retentada: o chamador deve substituir pelo fallback.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return "formato de tradução inválido: " + e.Reason
}

// GatewayError embrulha o último erro após o esgotamento das tentativas
type GatewayError struct {
	Attempts int
	Err      error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("tradução falhou após %d tentativas: %v", e.Attempts, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
