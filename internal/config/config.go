package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App   AppConfig
	Auth  AuthConfig
	Store StoreConfig
	Ai    AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type AuthConfig struct {
	JwtSecret     string
	TokenTTLHours int
}

type StoreConfig struct {
	CredentialFile  string
	SessionTTLHours int
}

type AIConfig struct {
	Provider      string // "gemini", "ollama" or "huggingface"
	Model         string
	GeminiAPIKey  string
	OllamaBaseURL string
	HFAPIKey      string
	HFBaseURL     string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Auth: AuthConfig{
			JwtSecret:     getEnv("JWT_SECRET", "default_secret"),
			TokenTTLHours: getEnvAsInt("JWT_TTL_HOURS", 24),
		},
		Store: StoreConfig{
			CredentialFile:  getEnv("CREDENTIAL_FILE", "data/users.json"),
			SessionTTLHours: getEnvAsInt("SESSION_TTL_HOURS", 24),
		},
		Ai: AIConfig{
			Provider:      getEnv("LLM_PROVIDER", "gemini"),
			Model:         getEnv("LLM_MODEL", "gemini-1.5-flash"),
			GeminiAPIKey:  getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HFAPIKey:      getEnv("HUGGINGFACE_API_KEY", ""),
			HFBaseURL:     getEnv("HUGGINGFACE_BASE_URL", ""),
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
