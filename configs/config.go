package config

import (
	"log"
	"os"
	"strconv"

	"machine-diagnosis-api/pkg/inference"
)

// Config holds the application configuration
type Config struct {
	Port          string
	Environment   string
	APIKey        string
	AdminUsername string
	AdminPassword string

	// ナレッジベース
	KnowledgeBasePath string
	DiagnosisDataPath string
	StaticDir         string

	// 部分一致の方針
	PartialMatch                bool
	PartialMatchMaxAntecedents  int
	PartialMatchMinOverlapRatio float64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:                        getEnv("PORT", "8080"),
		Environment:                 getEnv("ENVIRONMENT", "development"),
		APIKey:                      getEnv("API_KEY", ""),
		AdminUsername:               getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:               getEnv("ADMIN_PASSWORD", ""),
		KnowledgeBasePath:           getEnv("KNOWLEDGE_BASE_PATH", "data/knowledge_base.json"),
		DiagnosisDataPath:           getEnv("DIAGNOSIS_DATA_PATH", "data/diagnosis_data.json"),
		StaticDir:                   getEnv("STATIC_DIR", "static"),
		PartialMatch:                getEnvBool("PARTIAL_MATCH", true),
		PartialMatchMaxAntecedents:  getEnvInt("PARTIAL_MATCH_MAX_ANTECEDENTS", 2),
		PartialMatchMinOverlapRatio: getEnvFloat("PARTIAL_MATCH_MIN_RATIO", 0.5),
	}
}

// MatchPolicy は設定から推論エンジンの部分一致方針を組み立てます。
func (c *Config) MatchPolicy() inference.MatchPolicy {
	return inference.MatchPolicy{
		PartialMatch:          c.PartialMatch,
		MaxPartialAntecedents: c.PartialMatchMaxAntecedents,
		MinOverlapRatio:       c.PartialMatchMinOverlapRatio,
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: invalid boolean for %s=%q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid integer for %s=%q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return i
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Warning: invalid number for %s=%q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return f
}
