package config

import (
	"github.com/joho/godotenv"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port                    string
	ListingDBURI            string
	ListingDBHost           string
	ListingDBPort           string
	ListingDBName           string
	ListingCollection       string
	ListingCacheHost        string
	ListingCachePort        string
	ListingCacheTTL         time.Duration
	JaegerAddress           string
	SecretKey               string
	FirebaseProjectID       string
	FirebaseCredentialsFile string
	SMTPHost                string
	SMTPPort                int
	SMTPEmail               string
	SMTPPassword            string
	LogFilePath             string
	RbacModelPath           string
	RbacPolicyPath          string
	AllowedOrigins          []string
}

func NewConfig() *Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	return &Config{
		Port:                    getEnv("ROOMMATE_SERVICE_PORT", "3000"),
		ListingDBURI:            os.Getenv("LISTING_DB_URI"),
		ListingDBHost:           getEnv("LISTING_DB_HOST", "localhost"),
		ListingDBPort:           getEnv("LISTING_DB_PORT", "27017"),
		ListingDBName:           getEnv("LISTING_DB_NAME", "roommate"),
		ListingCollection:       getEnv("LISTING_COLLECTION", "add"),
		ListingCacheHost:        os.Getenv("LISTING_CACHE_HOST"),
		ListingCachePort:        getEnv("LISTING_CACHE_PORT", "6379"),
		ListingCacheTTL:         getDuration("LISTING_CACHE_TTL", 30*time.Minute),
		JaegerAddress:           os.Getenv("JAEGER_ADDRESS"),
		SecretKey:               os.Getenv("SECRET_KEY"),
		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		SMTPHost:                os.Getenv("SMTP_HOST"),
		SMTPPort:                getInt("SMTP_PORT", 587),
		SMTPEmail:               os.Getenv("SMTP_AUTH_MAIL"),
		SMTPPassword:            os.Getenv("SMTP_AUTH_PASSWORD"),
		LogFilePath:             os.Getenv("LOG_FILE_PATH"),
		RbacModelPath:           getEnv("RBAC_MODEL_PATH", "./rbac_model.conf"),
		RbacPolicyPath:          getEnv("RBAC_POLICY_PATH", "./policy.csv"),
		AllowedOrigins:          getList("ALLOWED_ORIGINS", []string{"*"}),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func getList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
