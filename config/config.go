package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging        LoggingConfig   `yaml:"logging"`
	Server         ServerConfig    `yaml:"server"`
	Mongo          MongoConfig     `yaml:"mongo"`
	GeminiModel    string          `yaml:"gemini_model"`
	EmbeddingModel string          `yaml:"embedding_model"`
	Scoring        ScoringConfig   `yaml:"scoring"`
	Embedding      EmbeddingConfig `yaml:"embedding"`
	Summary        SummaryConfig   `yaml:"summary"`
	Retention      RetentionConfig `yaml:"retention"`
	Schedule       ScheduleConfig  `yaml:"schedule"`
	Feeds          []FeedSource    `yaml:"feeds"`
	WatchedRepos   []WatchedRepo   `yaml:"watched_repos"`

	// Secrets, loaded from the environment rather than config.yaml.
	GeminiApiKey     string `yaml:"-"`
	AdminToken       string `yaml:"-"`
	SerperApiKey     string `yaml:"-"`
	ProductHuntToken string `yaml:"-"`
	DevToApiKey      string `yaml:"-"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type MongoConfig struct {
	URI    string `yaml:"uri"`
	DBName string `yaml:"db_name"`
}

// ScoringConfig controls the LLM relevance judge.
type ScoringConfig struct {
	// BatchSize is the number of articles sent per judge call.
	BatchSize int `yaml:"batch_size"`

	// KeepThreshold is the minimum relevance score an article needs to
	// proceed into summarization, embedding and digests.
	KeepThreshold float64 `yaml:"keep_threshold"`
}

type EmbeddingConfig struct {
	// BatchSize is capped by the embedding provider's per-call limit.
	BatchSize int `yaml:"batch_size"`

	// MaxPerRun bounds embedding cost per cycle; the backlog is picked up
	// on the next cycle.
	MaxPerRun int `yaml:"max_per_run"`
}

type SummaryConfig struct {
	// MaxArticles is the top-N by score summarized per cycle.
	MaxArticles int `yaml:"max_articles"`
}

type RetentionConfig struct {
	// MaxAgeDays before an unstarred low-score article is purged.
	MaxAgeDays int `yaml:"max_age_days"`

	// MinScoreToKeep: articles at or above this score survive the purge
	// regardless of age.
	MinScoreToKeep float64 `yaml:"min_score_to_keep"`
}

type ScheduleConfig struct {
	DailyHour     int    `yaml:"daily_hour"`
	WeeklyWeekday int    `yaml:"weekly_weekday"`
	Timezone      string `yaml:"timezone"`
}

// FeedSource is a single built-in RSS/Atom source.
type FeedSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// WatchedRepo is a GitHub repository polled for new releases.
type WatchedRepo struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
	Name  string `yaml:"name"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	var c AppConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		panic(err)
	}
	applyDefaults(&c)

	c.GeminiApiKey = os.Getenv("GEMINI_API_KEY")
	c.AdminToken = os.Getenv("ADMIN_TOKEN")
	c.SerperApiKey = os.Getenv("SERPER_API_KEY")
	c.ProductHuntToken = os.Getenv("PRODUCTHUNT_TOKEN")
	c.DevToApiKey = os.Getenv("DEVTO_API_KEY")
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		c.Mongo.URI = uri
	}

	config = &c
}

func applyDefaults(c *AppConfig) {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = "mongodb://localhost:27017"
	}
	if c.Mongo.DBName == "" {
		c.Mongo.DBName = "techradar"
	}
	if c.GeminiModel == "" {
		c.GeminiModel = "gemini-2.5-flash"
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = "gemini-embedding-001"
	}
	if c.Scoring.BatchSize == 0 {
		c.Scoring.BatchSize = 25
	}
	if c.Scoring.KeepThreshold == 0 {
		c.Scoring.KeepThreshold = 0.4
	}
	if c.Embedding.BatchSize == 0 {
		c.Embedding.BatchSize = 64
	}
	if c.Embedding.MaxPerRun == 0 {
		c.Embedding.MaxPerRun = 200
	}
	if c.Summary.MaxArticles == 0 {
		c.Summary.MaxArticles = 20
	}
	if c.Retention.MaxAgeDays == 0 {
		c.Retention.MaxAgeDays = 60
	}
	if c.Retention.MinScoreToKeep == 0 {
		c.Retention.MinScoreToKeep = 0.4
	}
	if c.Schedule.DailyHour == 0 {
		c.Schedule.DailyHour = 6
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "UTC"
	}
}

// Validate checks configuration the process cannot run without. Optional
// credentials (Serper, Product Hunt, Dev.to) only disable their source.
func (c AppConfig) Validate() error {
	if c.GeminiApiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	return nil
}

// SupportsVectorSearch reports whether the embedding and semantic search
// features can run. The Gemini key drives both generation and embeddings.
func (c AppConfig) SupportsVectorSearch() bool {
	return c.GeminiApiKey != "" && c.EmbeddingModel != ""
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
