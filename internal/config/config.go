// Package config gerencia configurações da aplicação via variáveis de ambiente.
//
// # Variáveis de Ambiente
//
// ## Servidor
//   - SERVER_PORT: Porta do servidor HTTP (default: 8080)
//
// ## Gemini
//   - GEMINI_API_KEY: Chave da API Google Gemini (aceita valor cifrado com prefixo "enc:")
//   - GEMINI_CHAT_MODEL: Modelo usado na tradução de DDL (default: gemini-2.0-flash)
//
// ## Tradução
//   - SOURCE_DIALECT: Dialeto do banco de origem (default: oracle)
//   - TARGET_DIALECT: Dialeto do banco de destino (default: clickhouse)
//   - TRANSLATION_MAX_ATTEMPTS: Tentativas por objeto no gateway (default: 3)
//   - TRANSLATION_TIMEOUT_SECONDS: Timeout por tentativa (default: 45)
//   - TRANSLATION_BACKOFF_CAP_SECONDS: Teto do backoff exponencial (default: 30)
//   - CIRCUIT_FAILURE_THRESHOLD: Falhas consecutivas para abrir o circuito (default: 5)
//   - CIRCUIT_COOLDOWN_SECONDS: Tempo com o circuito aberto (default: 90)
//   - MIGRATION_BATCH_SIZE: Objetos traduzidos por lote (default: 5)
//   - TYPE_MAPPING_OVERRIDES: JSON com mapeamentos de tipo adicionais, ex:
//     {"XMLTYPE": {"target": "String", "description": "XML como texto"}}
//
// ## Banco de origem (Oracle)
//   - ORACLE_HOST, ORACLE_PORT (default: 1521), ORACLE_SERVICE_NAME,
//     ORACLE_USERNAME, ORACLE_PASSWORD, ORACLE_SCHEMA
//   - ORACLE_PASSWORD aceita valor cifrado com prefixo "enc:"
//
// ## Banco de destino
//   - TARGET_HOST, TARGET_PORT (default: 9004), TARGET_DATABASE,
//     TARGET_USERNAME, TARGET_PASSWORD
//   - TARGET_PASSWORD aceita valor cifrado com prefixo "enc:"
//
// ## Credenciais cifradas
//   - CREDENTIAL_KEY: Chave AES em base64 para decifrar valores "enc:"
//   - CREDENTIAL_KEY_FILE: Caminho de arquivo contendo a chave (alternativa)
//
// ## Typesense (histórico de execuções, opcional)
//   - TYPESENSE_HOST, TYPESENSE_PORT (default: 8108), TYPESENSE_API_KEY,
//     TYPESENSE_PROTOCOL (default: http)
//
// ## Tracing
//   - TRACING_ENABLED (default: false), TRACING_ENDPOINT (default: localhost:4317)
package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/prefeitura-rio/app-migracao-schema/internal/translator"
)

// DatabaseConfig contém a configuração de conexão de um banco
type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
}

// Configured informa se há configuração mínima para conectar
func (d DatabaseConfig) Configured() bool {
	return d.Host != ""
}

// TranslationConfig contém a configuração do gateway de tradução
type TranslationConfig struct {
	MaxAttempts       int
	TimeoutSeconds    int
	BackoffCapSeconds int
	CircuitThreshold  int
	CircuitCooldownS  int
	BatchSize         int
}

type Config struct {
	ServerPort string

	// Gemini configuration
	GeminiAPIKey    string
	GeminiChatModel string

	// Dialetos da migração
	SourceDialect string
	TargetDialect string

	Translation TranslationConfig

	Source DatabaseConfig
	Target DatabaseConfig

	// Typesense (histórico de execuções)
	TypesenseHost     string
	TypesensePort     string
	TypesenseAPIKey   string
	TypesenseProtocol string

	// Tracing configuration
	TracingEnabled  bool
	TracingEndpoint string

	// Mapeamentos de tipo adicionais aplicados antes das regras padrão
	TypeMappingOverrides map[string]translator.TypeMapping
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiChatModel: getEnv("GEMINI_CHAT_MODEL", "gemini-2.0-flash"),

		SourceDialect: getEnv("SOURCE_DIALECT", "oracle"),
		TargetDialect: getEnv("TARGET_DIALECT", "clickhouse"),

		Translation: TranslationConfig{
			MaxAttempts:       getEnvInt("TRANSLATION_MAX_ATTEMPTS", 3),
			TimeoutSeconds:    getEnvInt("TRANSLATION_TIMEOUT_SECONDS", 45),
			BackoffCapSeconds: getEnvInt("TRANSLATION_BACKOFF_CAP_SECONDS", 30),
			CircuitThreshold:  getEnvInt("CIRCUIT_FAILURE_THRESHOLD", 5),
			CircuitCooldownS:  getEnvInt("CIRCUIT_COOLDOWN_SECONDS", 90),
			BatchSize:         getEnvInt("MIGRATION_BATCH_SIZE", 5),
		},

		Source: DatabaseConfig{
			Host:     getEnv("ORACLE_HOST", ""),
			Port:     getEnvInt("ORACLE_PORT", 1521),
			Database: getEnv("ORACLE_SERVICE_NAME", ""),
			Username: getEnv("ORACLE_USERNAME", ""),
			Password: getEnv("ORACLE_PASSWORD", ""),
			Schema:   getEnv("ORACLE_SCHEMA", ""),
		},

		Target: DatabaseConfig{
			Host:     getEnv("TARGET_HOST", ""),
			Port:     getEnvInt("TARGET_PORT", 9004),
			Database: getEnv("TARGET_DATABASE", "default"),
			Username: getEnv("TARGET_USERNAME", "default"),
			Password: getEnv("TARGET_PASSWORD", ""),
		},

		TypesenseHost:     getEnv("TYPESENSE_HOST", ""),
		TypesensePort:     getEnv("TYPESENSE_PORT", "8108"),
		TypesenseAPIKey:   getEnv("TYPESENSE_API_KEY", ""),
		TypesenseProtocol: getEnv("TYPESENSE_PROTOCOL", "http"),

		TracingEnabled:  getEnv("TRACING_ENABLED", "false") == "true",
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4317"),
	}

	// Decifra credenciais com prefixo "enc:"
	cfg.GeminiAPIKey = decryptIfNeeded("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.Source.Password = decryptIfNeeded("ORACLE_PASSWORD", cfg.Source.Password)
	cfg.Target.Password = decryptIfNeeded("TARGET_PASSWORD", cfg.Target.Password)

	// Mapeamentos de tipo adicionais por ambiente
	if overridesJSON := os.Getenv("TYPE_MAPPING_OVERRIDES"); overridesJSON != "" {
		if err := json.Unmarshal([]byte(overridesJSON), &cfg.TypeMappingOverrides); err != nil {
			log.Fatalf("Falha ao interpretar TYPE_MAPPING_OVERRIDES: %v", err)
		}
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
