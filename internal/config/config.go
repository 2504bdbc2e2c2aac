package config

import (
	"os"
	"strconv"

	"github.com/goaccelovate/ai-chat-backend/internal/auth"
)

type Config struct {
	HTTPAddr string

	// sqlite (default) or mysql
	DBDriver string
	DBDSN    string

	JWTSecret         string
	AdminPasswordHash string

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RateLimitPerMin  int

	// empty RABBIT_URL disables event publishing
	RabbitURL   string
	RabbitQueue string

	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	SMTPFrom    string
	NotifyEmail string

	// base-URL overrides, mainly for tests and proxies
	OpenAIBaseURL string
	GeminiBaseURL string
}

func Load() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "ai_chat.db"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	ratePerMin := 20
	if v := os.Getenv("RATE_LIMIT_PER_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ratePerMin = n
		}
	}

	rabbitQueue := os.Getenv("RABBIT_QUEUE")
	if rabbitQueue == "" {
		rabbitQueue = "chat_events"
	}

	smtpPort := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			smtpPort = n
		}
	}
	smtpFrom := os.Getenv("SMTP_FROM")
	if smtpFrom == "" {
		smtpFrom = os.Getenv("SMTP_USER")
	}

	// Deployments can hand us a bcrypt hash directly, or a plain password
	// that gets hashed once at startup. Neither set = admin login disabled.
	adminHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if adminHash == "" {
		if pw := os.Getenv("ADMIN_PASSWORD"); pw != "" {
			if h, err := auth.HashPassword(pw); err == nil {
				adminHash = h
			}
		}
	}

	return Config{
		HTTPAddr: addr,

		DBDriver: driver,
		DBDSN:    dsn,

		JWTSecret:         secret,
		AdminPasswordHash: adminHash,

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         redisDB,
		RateLimitPerMin: ratePerMin,

		RabbitURL:   os.Getenv("RABBIT_URL"),
		RabbitQueue: rabbitQueue,

		SMTPHost:    os.Getenv("SMTP_HOST"),
		SMTPPort:    smtpPort,
		SMTPUser:    os.Getenv("SMTP_USER"),
		SMTPPass:    os.Getenv("SMTP_PASS"),
		SMTPFrom:    smtpFrom,
		NotifyEmail: os.Getenv("NOTIFY_EMAIL"),

		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),
	}
}
