package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned by Validate when no key is configured for the
// selected provider.
var ErrMissingAPIKey = errors.New("missing API key")

// Providers
const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
	ProviderGemini = "gemini"
)

// Storage backends
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Console   ConsoleConfig   `mapstructure:"console"`
	Log       LogConfig       `mapstructure:"log"`
}

// OpenAIConfig selects the completion provider and its sampling parameters.
// The section keeps its name for every provider.
type OpenAIConfig struct {
	Provider         string        `mapstructure:"provider"`
	APIKey           string        `mapstructure:"api_key"`
	Endpoint         string        `mapstructure:"endpoint"`
	OrgID            string        `mapstructure:"org_id"`
	Model            string        `mapstructure:"model"`
	MaxTokens        int           `mapstructure:"max_tokens"`
	Temperature      float32       `mapstructure:"temperature"`
	TopP             float32       `mapstructure:"top_p"`
	FrequencyPenalty float32       `mapstructure:"frequency_penalty"`
	PresencePenalty  float32       `mapstructure:"presence_penalty"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

type AssistantConfig struct {
	SystemPrompt string `mapstructure:"system_prompt"`
	Priming      string `mapstructure:"priming"`
	MaxRounds    int    `mapstructure:"max_rounds"`
}

type StorageConfig struct {
	Backend    string         `mapstructure:"backend"`
	DataDir    string         `mapstructure:"data_dir"`
	SQLitePath string         `mapstructure:"sqlite_path"`
	Database   DatabaseConfig `mapstructure:"database"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type ConsoleConfig struct {
	Markdown bool   `mapstructure:"markdown"`
	Currency string `mapstructure:"currency"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

// DefaultSystemPrompt introduces the assistant to the model. {today} is
// replaced with the current date at the start of every turn.
const DefaultSystemPrompt = `You are a friendly personal financial assistant named MyWallet.
Your responsibility is to help the user keep track of their expenses. You can help the user add, update and delete expenses and categories.
You can also help the user get the list of expenses and categories, and the total expenses by category, optionally within a date range.

Before adding a new expense, show a summary of it with category, date and amount and ask the user to confirm. You can decide which category should be used and ask the user to confirm.
Once the user confirms, add it to the data store.

Example: "You are going to add a new expense with category {category}, date {date}, amount {amount}. Are you sure?".

Each time you can only get 1 month of expenses. If you need more than 1 month of expenses, ask the user to provide the month and year.

This is the category scheme:
{
    "id": <int>,
    "name": <string>
}

This is the expense scheme:
{
    "id": <string>,
    "categoryId": <int>,
    "amount": <decimal>,
    "date": <DateTime>,
    "description": <string>
}

Today is {today}`

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}
	if u.Host == "" {
		return DatabaseConfig{}, fmt.Errorf("no host in %q", dbURL)
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		if _, err := fmt.Sscanf(u.Port(), "%d", &port); err != nil {
			return DatabaseConfig{}, fmt.Errorf("invalid port %q: %w", u.Port(), err)
		}
	}

	sslMode := u.Query().Get("sslmode")
	if sslMode == "" {
		sslMode = "disable"
	}

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:  sslMode,
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("openai.provider", ProviderOpenAI)
	v.SetDefault("openai.model", "gpt-4")
	v.SetDefault("openai.max_tokens", 1500)
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("openai.top_p", 0)
	v.SetDefault("openai.frequency_penalty", 0)
	v.SetDefault("openai.presence_penalty", 0)
	v.SetDefault("openai.timeout", 60*time.Second)

	v.SetDefault("assistant.system_prompt", DefaultSystemPrompt)
	v.SetDefault("assistant.priming", "startup")
	v.SetDefault("assistant.max_rounds", 10)

	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("storage.sqlite_path", "data/wallet.db")
	v.SetDefault("storage.database.host", "localhost")
	v.SetDefault("storage.database.port", 5432)
	v.SetDefault("storage.database.user", "postgres")
	v.SetDefault("storage.database.dbname", "wallet")
	v.SetDefault("storage.database.sslmode", "disable")

	v.SetDefault("console.markdown", false)
	v.SetDefault("console.currency", "USD")

	v.SetDefault("log.development", false)
}

// LoadConfig reads the YAML file at path, if any, over the defaults. A .env
// file in the working directory is loaded into the environment first, then
// environment variables override file values (openai.model is read from
// OPENAI_MODEL).
func LoadConfig(path string) (*Config, error) {
	// a missing .env is not an error
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		config.Storage.Database = dbConfig
	}

	if apiKey := providerKey(v, config.OpenAI.Provider); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}

	return &config, nil
}

func providerKey(v *viper.Viper, provider string) string {
	switch provider {
	case ProviderAzure:
		return v.GetString("AZURE_OPENAI_KEY")
	case ProviderGemini:
		return v.GetString("GEMINI_API_KEY")
	}
	return v.GetString("OPENAI_API_KEY")
}

// Validate checks the enumerated settings and that the provider can be
// reached.
func (c *Config) Validate() error {
	switch c.OpenAI.Provider {
	case ProviderOpenAI, ProviderGemini:
	case ProviderAzure:
		if c.OpenAI.Endpoint == "" {
			return errors.New("openai.endpoint is required for the azure provider")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.OpenAI.Provider)
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("%w for provider %s", ErrMissingAPIKey, c.OpenAI.Provider)
	}

	switch c.Storage.Backend {
	case BackendFile, BackendMemory, BackendPostgres, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Assistant.Priming {
	case "startup", "turn", "off":
	default:
		return fmt.Errorf("unknown priming mode %q", c.Assistant.Priming)
	}

	if c.Assistant.MaxRounds < 0 {
		return fmt.Errorf("assistant.max_rounds must not be negative, got %d", c.Assistant.MaxRounds)
	}
	return nil
}
