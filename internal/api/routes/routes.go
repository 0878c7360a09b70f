package routes

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"google.golang.org/genai"

	"github.com/prefeitura-rio/app-migracao-schema/internal/api/handlers"
	"github.com/prefeitura-rio/app-migracao-schema/internal/config"
	"github.com/prefeitura-rio/app-migracao-schema/internal/database"
	middlewares "github.com/prefeitura-rio/app-migracao-schema/internal/middleware"
	"github.com/prefeitura-rio/app-migracao-schema/internal/services"
	"github.com/prefeitura-rio/app-migracao-schema/internal/store"
	"github.com/prefeitura-rio/app-migracao-schema/internal/translator"
	"github.com/prefeitura-rio/app-migracao-schema/internal/typesense"
)

func SetupRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	r.Use(corsMiddleware())
	r.Use(middlewares.RequestTiming())

	// Extrator do banco de origem
	var extractor database.SchemaExtractor
	if cfg.Source.Configured() {
		var err error
		extractor, err = database.NewSchemaExtractor(cfg.SourceDialect, database.Config{
			Host:     cfg.Source.Host,
			Port:     cfg.Source.Port,
			Database: cfg.Source.Database,
			Username: cfg.Source.Username,
			Password: cfg.Source.Password,
			Schema:   cfg.Source.Schema,
		})
		if err != nil {
			log.Fatalf("Erro ao criar extrator de origem: %v", err)
		}
	} else {
		log.Printf("Banco de origem não configurado; extração direta desabilitada")
	}
	extractionService := services.NewExtractionService(extractor)

	// Adaptador do banco de destino
	var target database.ObjectCreator
	if cfg.Target.Configured() {
		var err error
		target, err = database.NewObjectCreator(cfg.TargetDialect, database.Config{
			Host:     cfg.Target.Host,
			Port:     cfg.Target.Port,
			Database: cfg.Target.Database,
			Username: cfg.Target.Username,
			Password: cfg.Target.Password,
		})
		if err != nil {
			log.Fatalf("Erro ao criar adaptador de destino: %v", err)
		}
	} else {
		log.Printf("Banco de destino não configurado; apenas dry-run disponível")
	}

	// Gateway de tradução sobre o Gemini
	var geminiClient *genai.Client
	if cfg.GeminiAPIKey != "" {
		ctx := context.Background()
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: cfg.GeminiAPIKey,
		})
		if err != nil {
			log.Printf("Erro ao inicializar cliente Gemini: %v", err)
		} else {
			geminiClient = client
		}
	}
	gateway := translator.NewGateway(geminiClient, translator.GatewayConfig{
		Model:            cfg.GeminiChatModel,
		MaxAttempts:      cfg.Translation.MaxAttempts,
		CallTimeout:      time.Duration(cfg.Translation.TimeoutSeconds) * time.Second,
		BackoffCap:       time.Duration(cfg.Translation.BackoffCapSeconds) * time.Second,
		CircuitThreshold: cfg.Translation.CircuitThreshold,
		CircuitCooldown:  time.Duration(cfg.Translation.CircuitCooldownS) * time.Second,
	})

	fallback := translator.NewFallbackTranslator(cfg.TypeMappingOverrides)

	// Histórico de execuções (opcional)
	var runStore services.RunStore
	if tsClient := typesense.NewClient(cfg); tsClient != nil {
		runStore = store.NewTypesenseRunStore(tsClient)
	}

	migrationConfig := services.MigrationConfig{
		SourceDialect: cfg.SourceDialect,
		TargetDialect: cfg.TargetDialect,
		BatchSize:     cfg.Translation.BatchSize,
	}

	// O orquestrador espera interfaces; colaboradores ausentes entram como nil
	var targetAdapter services.TargetAdapter
	if target != nil {
		targetAdapter = target
	}
	migrationService := services.NewMigrationService(migrationConfig, extractionService, gateway, fallback, targetAdapter, runStore)

	migrationHandler := handlers.NewMigrationHandler(migrationService)
	extractionHandler := handlers.NewExtractionHandler(extractionService)

	var sourcePinger, targetPinger handlers.DependencyPinger
	if extractor != nil {
		sourcePinger = extractor
	}
	if target != nil {
		targetPinger = target
	}
	healthHandler := handlers.NewHealthHandler(sourcePinger, targetPinger, gateway.Circuit())

	migrationLock := middlewares.NewMigrationLockMiddleware(migrationService)

	r.GET("/health", healthHandler.Health)
	r.GET("/liveness", healthHandler.Liveness)
	r.GET("/readiness", healthHandler.Readiness)

	api := r.Group("/api/v1")
	{
		admin := api.Group("/admin")
		{
			extraction := admin.Group("/extraction")
			extraction.Use(migrationLock.BlockWrites())
			{
				extraction.POST("/run", extractionHandler.RunExtraction)
				extraction.GET("/status", extractionHandler.GetStatus)
				extraction.POST("/load", extractionHandler.LoadSchema)
			}

			migration := admin.Group("/migration")
			{
				migration.POST("/start", migrationHandler.StartMigration)
				migration.GET("/status", migrationHandler.GetStatus)
				migration.GET("/results", migrationHandler.GetResults)
				migration.POST("/reset", migrationHandler.Reset)
				migration.GET("/history", migrationHandler.GetHistory)
			}
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
