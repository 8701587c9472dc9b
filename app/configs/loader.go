package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"GoRAGWorkshop/app/faults"
)

const (
	PromptStrict   = "strict"
	PromptFlexible = "flexible"

	StoreQdrant = "qdrant"
	StoreMemory = "memory"
)

type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Vectors   VectorsConfig   `yaml:"vectors"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// ModelConfig selects the OpenAI-compatible endpoint. BaseURL wins over the
// Vertex AI project and location.
type ModelConfig struct {
	ProjectID          string        `yaml:"project_id"`
	Location           string        `yaml:"location"`
	BaseURL            string        `yaml:"base_url" validate:"omitempty,url"`
	APIKey             string        `yaml:"api_key"`
	ChatModel          string        `yaml:"chat_model" validate:"required"`
	Temperature        float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	EmbeddingModel     string        `yaml:"embedding_model" validate:"required"`
	EmbeddingDimension int           `yaml:"embedding_dimension" validate:"gt=0"`
	Timeout            time.Duration `yaml:"timeout" validate:"gte=0"`
}

type VectorsConfig struct {
	Backend    string `yaml:"backend" validate:"oneof=qdrant memory"`
	URL        string `yaml:"url" validate:"required_if=Backend qdrant"`
	APIKey     string `yaml:"api_key"`
	Collection string `yaml:"collection" validate:"required"`
}

type RetrievalConfig struct {
	TopK       int     `yaml:"top_k" validate:"gt=0"`
	MinScore   float64 `yaml:"min_score"`
	PromptMode string  `yaml:"prompt_mode" validate:"oneof=strict flexible"`
	MemorySize int     `yaml:"memory_size" validate:"gt=0"`
}

type SplitConfig struct {
	Size    int `yaml:"size" validate:"gt=0"`
	Overlap int `yaml:"overlap" validate:"gte=0,ltfield=Size"`
}

type IngestionConfig struct {
	DocsDir string      `yaml:"docs_dir" validate:"required"`
	Init    SplitConfig `yaml:"init"`
	Upload  SplitConfig `yaml:"upload"`
	DBPath  string      `yaml:"db_path" validate:"required"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"omitempty,oneof=json console text"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func Defaults() Config {
	return Config{
		Model: ModelConfig{
			ChatModel:          "google/gemini-1.5-flash",
			Temperature:        0.1,
			EmbeddingModel:     "text-embedding-004",
			EmbeddingDimension: 768,
			Timeout:            60 * time.Second,
		},
		Vectors: VectorsConfig{
			Backend:    StoreQdrant,
			URL:        "http://localhost:6334",
			Collection: "kbindex",
		},
		Retrieval: RetrievalConfig{
			TopK:       4,
			PromptMode: PromptStrict,
			MemorySize: 10,
		},
		Ingestion: IngestionConfig{
			DocsDir: "./docs",
			Init:    SplitConfig{Size: 300, Overlap: 30},
			Upload:  SplitConfig{Size: 2000, Overlap: 200},
			DBPath:  "data/ingestion.db",
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads .env, then the optional YAML file at path, then the environment.
// Later sources override earlier ones.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return faults.Configuration("read config file", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err = yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return faults.Configuration("parse config file", fmt.Errorf("%s: %w", path, err))
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]error, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Errorf("%s failed %q (%s)", fe.Namespace(), fe.Tag(), fe.Param()))
			}
			err = errors.Join(msgs...)
		}
		return faults.Configuration("validate config", err)
	}
	if c.Model.BaseURL == "" && (c.Model.ProjectID == "" || c.Model.Location == "") {
		return faults.Configuration("validate config",
			errors.New("set LLM_BASE_URL or both PROJECT_ID and LOCATION"))
	}
	return nil
}
