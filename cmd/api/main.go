package main

import (
	"log"

	_ "github.com/prefeitura-rio/app-migracao-schema/docs"
	"github.com/prefeitura-rio/app-migracao-schema/internal/api/routes"
	"github.com/prefeitura-rio/app-migracao-schema/internal/config"
	"github.com/prefeitura-rio/app-migracao-schema/internal/observability"
)

// @title           Migração de Schema API
// @version         1.0
// @description     API para tradução de DDL e migração de estrutura entre bancos de dados, com tradução via Google Gemini e fallback determinístico

// @contact.name   Prefeitura do Rio de Janeiro
// @contact.url    https://prefeitura.rio
// @contact.email  contato@prefeitura.rio

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      services.staging.app.dados.rio/app-migracao-schema

func main() {

	cfg := config.LoadConfig()

	observability.InitTracer(cfg)
	defer observability.ShutdownTracer()

	r := routes.SetupRouter(cfg)

	log.Printf("Servidor iniciado na porta %s", cfg.ServerPort)
	err := r.Run(":" + cfg.ServerPort)
	if err != nil {
		log.Fatalf("Erro ao iniciar servidor: %v", err)
	}
}
