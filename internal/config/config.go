package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Suggest  SuggestConfig
	Index    IndexConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "openai"
	OllamaBaseURL     string
	OllamaModel       string
	OpenAIKey         string
	OpenAIModel       string
}

// SuggestConfig carries the ranking and throttling policy. These are
// policy constants, not hidden magic numbers: every one of them is
// tunable per deployment.
type SuggestConfig struct {
	TopK              int     // bound on the returned result list
	SearchLimit       int     // candidates fetched from the index before ranking
	MinSentenceLen    int     // server-side re-validation threshold
	HighThreshold     float64 // confidence > this => High tier
	MediumThreshold   float64 // confidence >= this => Medium tier
	CollapseByPaper   bool    // one suggestion per source paper
	RequestsPerSecond float64 // per-connection suggest rate limit
	RequestBurst      int
	DebounceWindow    time.Duration // advertised to clients
}

type IndexConfig struct {
	TopicName    string
	ChunkSize    int
	ChunkOverlap int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:       getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		},
		Suggest: SuggestConfig{
			TopK:              getEnvAsInt("SUGGEST_TOP_K", 10),
			SearchLimit:       getEnvAsInt("SUGGEST_SEARCH_LIMIT", 30),
			MinSentenceLen:    getEnvAsInt("SUGGEST_MIN_SENTENCE_LEN", 10),
			HighThreshold:     getEnvAsFloat("SUGGEST_HIGH_THRESHOLD", 0.85),
			MediumThreshold:   getEnvAsFloat("SUGGEST_MEDIUM_THRESHOLD", 0.70),
			CollapseByPaper:   getEnvAsBool("SUGGEST_COLLAPSE_BY_PAPER", false),
			RequestsPerSecond: getEnvAsFloat("SUGGEST_RATE_PER_SECOND", 5),
			RequestBurst:      getEnvAsInt("SUGGEST_RATE_BURST", 10),
			DebounceWindow:    time.Duration(getEnvAsInt("SUGGEST_DEBOUNCE_MS", 500)) * time.Millisecond,
		},
		Index: IndexConfig{
			TopicName:    getEnv("INDEX_PASSAGE_TOPIC_NAME", "INDEX_PASSAGE"),
			ChunkSize:    getEnvAsInt("INDEX_CHUNK_SIZE", 1000),
			ChunkOverlap: getEnvAsInt("INDEX_CHUNK_OVERLAP", 200),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
