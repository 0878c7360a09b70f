package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/prefeitura-rio/app-migracao-schema/internal/config"
	"github.com/prefeitura-rio/app-migracao-schema/internal/database"
	"github.com/prefeitura-rio/app-migracao-schema/internal/models"
	"github.com/prefeitura-rio/app-migracao-schema/internal/services"
	"github.com/prefeitura-rio/app-migracao-schema/internal/store"
	"github.com/prefeitura-rio/app-migracao-schema/internal/translator"
	"github.com/prefeitura-rio/app-migracao-schema/internal/typesense"
	"google.golang.org/genai"
)

var (
	schemaFile = flag.String("file", "", "Arquivo JSON com schema extraído (alternativa à extração direta)")
	dryRun     = flag.Bool("dry-run", false, "Traduz sem criar objetos no destino")
	outFile    = flag.String("out", "", "Arquivo de saída para o schema extraído (comando extract)")
	page       = flag.Int("page", 1, "Página para listagem de histórico")
	perPage    = flag.Int("per-page", 20, "Itens por página para listagem de histórico")
	jsonOutput = flag.Bool("json", false, "Saída em formato JSON")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Uso: %s <comando> [opções]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Comandos disponíveis:\n")
		fmt.Fprintf(os.Stderr, "  extract   Extrai o schema do banco de origem\n")
		fmt.Fprintf(os.Stderr, "  run       Executa a migração de estrutura (tradução + criação)\n")
		fmt.Fprintf(os.Stderr, "  history   Lista o histórico de migrações\n")
		fmt.Fprintf(os.Stderr, "\nOpções:\n")
		flag.PrintDefaults()
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	command := os.Args[1]
	os.Args = append(os.Args[:1], os.Args[2:]...)
	flag.Parse()

	cfg := config.LoadConfig()
	ctx := context.Background()

	switch command {
	case "extract":
		cmdExtract(ctx, cfg)
	case "run":
		cmdRun(ctx, cfg)
	case "history":
		cmdHistory(ctx, cfg)
	default:
		fmt.Fprintf(os.Stderr, "Comando desconhecido: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func newExtractionService(cfg *config.Config) *services.ExtractionService {
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
			fmt.Fprintf(os.Stderr, "❌ Erro ao criar extrator de origem: %v\n", err)
			os.Exit(1)
		}
	}
	return services.NewExtractionService(extractor)
}

func newMigrationService(cfg *config.Config, extraction *services.ExtractionService) *services.MigrationService {
	var geminiClient *genai.Client
	if cfg.GeminiAPIKey != "" {
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
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

	var target services.TargetAdapter
	if cfg.Target.Configured() {
		creator, err := database.NewObjectCreator(cfg.TargetDialect, database.Config{
			Host:     cfg.Target.Host,
			Port:     cfg.Target.Port,
			Database: cfg.Target.Database,
			Username: cfg.Target.Username,
			Password: cfg.Target.Password,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Erro ao criar adaptador de destino: %v\n", err)
			os.Exit(1)
		}
		target = creator
	}

	var runStore services.RunStore
	if tsClient := typesense.NewClient(cfg); tsClient != nil {
		runStore = store.NewTypesenseRunStore(tsClient)
	}

	migrationConfig := services.MigrationConfig{
		SourceDialect: cfg.SourceDialect,
		TargetDialect: cfg.TargetDialect,
		BatchSize:     cfg.Translation.BatchSize,
	}

	return services.NewMigrationService(migrationConfig, extraction, gateway, fallback, target, runStore)
}

func cmdExtract(ctx context.Context, cfg *config.Config) {
	extraction := newExtractionService(cfg)

	fmt.Println("🔍 Extraindo schema do banco de origem...")
	result, err := extraction.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Erro na extração: %v\n", err)
		os.Exit(1)
	}

	if *outFile != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("Erro ao serializar schema: %v", err)
		}
		if err := os.WriteFile(*outFile, data, 0o644); err != nil {
			log.Fatalf("Erro ao gravar %s: %v", *outFile, err)
		}
		fmt.Printf("✅ Schema gravado em %s\n", *outFile)
	}

	if *jsonOutput {
		printJSON(extraction.Status())
		return
	}

	fmt.Println("\n✅ Extração concluída!")
	fmt.Printf("   Sequências: %d\n", len(result.Sequences))
	fmt.Printf("   Tabelas: %d\n", len(result.Tables))
	fmt.Printf("   Views: %d\n", len(result.Views))
}

func cmdRun(ctx context.Context, cfg *config.Config) {
	extraction := newExtractionService(cfg)

	if *schemaFile != "" {
		data, err := os.ReadFile(*schemaFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Erro ao ler %s: %v\n", *schemaFile, err)
			os.Exit(1)
		}
		var result models.ExtractionResult
		if err := json.Unmarshal(data, &result); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Schema inválido em %s: %v\n", *schemaFile, err)
			os.Exit(1)
		}
		extraction.SetResult(&result)
	} else {
		fmt.Println("🔍 Extraindo schema do banco de origem...")
		if _, err := extraction.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Erro na extração: %v\n", err)
			os.Exit(1)
		}
	}

	ms := newMigrationService(cfg, extraction)

	fmt.Println("🚀 Iniciando migração de estrutura")
	if *dryRun {
		fmt.Println("⚠️  Modo dry-run ativado - nenhum objeto será criado no destino")
	}

	status, err := ms.StartMigration(models.MigrationStartRequest{DryRun: *dryRun})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Erro ao iniciar migração: %v\n", err)
		os.Exit(1)
	}

	// A migração roda em background; acompanha o progresso até terminar
	lastPercent := -1
	for status.Running {
		if status.Progress.Percent != lastPercent {
			fmt.Printf("   %3d%% %s\n", status.Progress.Percent, status.Progress.Phase)
			lastPercent = status.Progress.Percent
		}
		time.Sleep(500 * time.Millisecond)
		status = ms.Status()
	}

	results := ms.Results()

	if *jsonOutput {
		printJSON(results)
		return
	}

	if status.Done {
		fmt.Println("\n✅ Migração concluída com sucesso!")
	} else {
		fmt.Println("\n❌ Migração falhou!")
	}

	fmt.Printf("   Status: %s\n", formatStatus(results.Status))
	if results.Translation != nil {
		fmt.Printf("   Objetos traduzidos: %d\n", len(results.Translation.Objects))
		for _, w := range results.Translation.Warnings {
			fmt.Printf("   ⚠️  %s\n", w)
		}
	}
	if results.Creation != nil {
		fmt.Printf("   Criação: %s\n", results.Creation.Message)
		for _, e := range results.Creation.Errors {
			fmt.Printf("   ❌ %s: %s\n", e.Object, e.Error)
		}
	}
	if results.Error != "" {
		fmt.Printf("   Erro: %s\n", results.Error)
		os.Exit(1)
	}
}

func cmdHistory(ctx context.Context, cfg *config.Config) {
	extraction := newExtractionService(cfg)
	ms := newMigrationService(cfg, extraction)

	response, err := ms.History(ctx, *page, *perPage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Erro ao obter histórico: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		printJSON(response)
		return
	}

	fmt.Printf("📜 Histórico de Migrações (página %d, %d resultados)\n", *page, response.Found)
	fmt.Println("---------------------------------------------------")

	if len(response.Runs) == 0 {
		fmt.Println("Nenhuma migração encontrada.")
		return
	}

	for _, run := range response.Runs {
		fmt.Printf("\n[%s] %s\n", run.RunID, string(run.Status))
		fmt.Printf("   Dialeto: %s → %s\n", run.SourceDialect, run.TargetDialect)
		fmt.Printf("   Iniciado: %s\n", formatTimestamp(run.StartedAt))
		if run.CompletedAt > 0 {
			fmt.Printf("   Completado: %s\n", formatTimestamp(run.CompletedAt))
		}
		fmt.Printf("   Objetos: %d/%d\n", run.TranslatedObjects, run.TotalObjects)
		if run.DryRun {
			fmt.Printf("   Dry-run: sim\n")
		}
		if run.ErrorMessage != "" {
			fmt.Printf("   Erro: %s\n", run.ErrorMessage)
		}
	}
}

func formatStatus(status models.MigrationStatus) string {
	switch status {
	case models.MigrationStatusIdle:
		return "🔵 Ocioso"
	case models.MigrationStatusInProgress:
		return "🟡 Em progresso"
	case models.MigrationStatusCompleted:
		return "🟢 Concluído"
	case models.MigrationStatusFailed:
		return "🔴 Falhou"
	default:
		return string(status)
	}
}

func formatTimestamp(ts int64) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(ts, 0).Format("02/01/2006 15:04:05")
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Erro ao serializar JSON: %v", err)
	}
	fmt.Println(string(data))
}
