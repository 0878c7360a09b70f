package services

import "errors"

var (
	ErrMigrationInProgress = errors.New("já existe uma migração em andamento")
	ErrExtractionMissing   = errors.New("extração não concluída: execute a extração do schema de origem antes da migração")
	ErrExtractionEmpty     = errors.New("extração vazia: nenhum objeto para migrar")
	ErrNoSource            = errors.New("banco de origem não configurado")
	ErrNoTarget            = errors.New("banco de destino não configurado")
	ErrResetWhileRunning   = errors.New("não é possível reiniciar com migração em andamento")
)
