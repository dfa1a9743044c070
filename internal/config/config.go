package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DatabaseURL       string
	JWTSecret         string
	AllowOrigins      []string
	LogstashTCPAddr   string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	SMTPFrom          string
	SessionTTL        time.Duration
	OTPTTL            time.Duration
	OTPResendCooldown time.Duration
	OTPLength         int
	CookieSecure      bool
	ReminderEnabled   bool
	ReminderTime      string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	otpLen := 6
	if v, err := strconv.Atoi(getenv("OTP_LENGTH", "6")); err == nil && v > 0 {
		otpLen = v
	}

	smtpPort := 587
	if v, err := strconv.Atoi(getenv("SMTP_PORT", "587")); err == nil && v > 0 {
		smtpPort = v
	}

	return Config{
		Port:              getenv("PORT", "8080"),
		DatabaseURL:       must("DATABASE_URL"),
		JWTSecret:         must("JWT_SECRET"),
		AllowOrigins:      splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogstashTCPAddr:   getenv("LOGSTASH_TCP_ADDR", ""),
		SMTPHost:          getenv("SMTP_HOST", ""),
		SMTPPort:          smtpPort,
		SMTPUsername:      getenv("SMTP_USERNAME", ""),
		SMTPPassword:      getenv("SMTP_PASSWORD", ""),
		SMTPFrom:          getenv("SMTP_FROM", "Task Management Tool <noreply@taskloop.dev>"),
		SessionTTL:        duration("SESSION_TTL", 24*time.Hour),
		OTPTTL:            duration("OTP_TTL", 10*time.Minute),
		OTPResendCooldown: duration("OTP_RESEND_COOLDOWN", 3*time.Minute),
		OTPLength:         otpLen,
		CookieSecure:      getenv("COOKIE_SECURE", "false") == "true",
		ReminderEnabled:   getenv("REMINDER_ENABLED", "true") == "true",
		ReminderTime:      getenv("REMINDER_TIME", "07:30"),
	}
}

func duration(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	parsed, err := time.ParseDuration(v)
	if err != nil || parsed <= 0 {
		log.Printf("Warning: invalid duration for %s: %q, using %s", k, v, d)
		return d
	}
	return parsed
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
