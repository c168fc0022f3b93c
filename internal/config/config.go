package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr      string
	CRDBDSN       string
	MongoURI      string
	RedisAddr     string
	RabbitURL     string
	JWTSecret     string
	SessionTTL    time.Duration
	AdminEmail    string
	AdminPassword string
	DraftTTL      time.Duration
	WhatsAppPhone string
	OTLPEndpoint  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	draftTTL, _ := time.ParseDuration(os.Getenv("DRAFT_TTL"))
	if draftTTL == 0 {
		draftTTL = 24 * time.Hour
	}
	sessionTTL, _ := time.ParseDuration(os.Getenv("SESSION_TTL"))
	if sessionTTL == 0 {
		sessionTTL = 12 * time.Hour
	}

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	phone := os.Getenv("WHATSAPP_PHONE")
	if phone == "" {
		phone = "6588911844"
	}

	return &Config{
		HTTPAddr:      addr,
		CRDBDSN:       os.Getenv("CRDB_DSN"),
		MongoURI:      os.Getenv("MONGO_URI"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RabbitURL:     os.Getenv("RABBIT_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		SessionTTL:    sessionTTL,
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		DraftTTL:      draftTTL,
		WhatsAppPhone: phone,
		OTLPEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}
