package configs

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"GoRAGWorkshop/app/faults"
)

func applyEnv(c *Config) error {
	envString("PROJECT_ID", &c.Model.ProjectID)
	envString("LOCATION", &c.Model.Location)
	envString("LLM_BASE_URL", &c.Model.BaseURL)
	envString("LLM_API_KEY", &c.Model.APIKey)
	envString("CHAT_MODEL", &c.Model.ChatModel)
	envString("EMBEDDING_MODEL", &c.Model.EmbeddingModel)
	envString("VECTOR_STORE", &c.Vectors.Backend)
	envString("QDRANT_URL", &c.Vectors.URL)
	envString("QDRANT_API_KEY", &c.Vectors.APIKey)
	envString("SEARCH_INDEX", &c.Vectors.Collection)
	envString("PROMPT_MODE", &c.Retrieval.PromptMode)
	envString("DOCS_DIR", &c.Ingestion.DocsDir)
	envString("DB_PATH", &c.Ingestion.DBPath)
	envString("SERVER_ADDR", &c.Server.Addr)
	envString("LOG_LEVEL", &c.Log.Level)
	envString("LOG_FORMAT", &c.Log.Format)

	return errors.Join(
		envFloat("CHAT_TEMPERATURE", &c.Model.Temperature),
		envInt("EMBEDDING_DIMENSION", &c.Model.EmbeddingDimension),
		envDuration("LLM_TIMEOUT", &c.Model.Timeout),
		envInt("RETRIEVAL_TOP_K", &c.Retrieval.TopK),
		envFloat("RETRIEVAL_MIN_SCORE", &c.Retrieval.MinScore),
		envInt("CHAT_MEMORY_SIZE", &c.Retrieval.MemorySize),
		envInt("INIT_SEGMENT_SIZE", &c.Ingestion.Init.Size),
		envInt("INIT_SEGMENT_OVERLAP", &c.Ingestion.Init.Overlap),
		envInt("UPLOAD_SEGMENT_SIZE", &c.Ingestion.Upload.Size),
		envInt("UPLOAD_SEGMENT_OVERLAP", &c.Ingestion.Upload.Overlap),
	)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	return envParse(key, dst, strconv.Atoi)
}

func envFloat(key string, dst *float64) error {
	return envParse(key, dst, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func envDuration(key string, dst *time.Duration) error {
	return envParse(key, dst, time.ParseDuration)
}

func envParse[T any](key string, dst *T, parse func(string) (T, error)) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	parsed, err := parse(v)
	if err != nil {
		return faults.Configuration("read "+key, fmt.Errorf("invalid value %q: %w", v, err))
	}
	*dst = parsed
	return nil
}
