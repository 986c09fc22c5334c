package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/api-sage/mini-bank-ledger/internal/logger"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=mini_bank_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultHTTPAddr = ":8080"
const defaultChannelID = "BranchAdmin"
const defaultChannelKey = "BranchAdminKey001"
const defaultBankName = "Mini Banking System"
const defaultOTPTTL = 5 * time.Minute

type Config struct {
	DatabaseDSN      string
	MigrationsDir    string
	HTTPAddr         string
	ChannelID        string
	ChannelKey       string
	BankName         string
	OTPTTL           time.Duration
	NotifyWebhookURL string
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("config no .env file found, relying on process environment", nil)
	}

	conn := strings.TrimSpace(os.Getenv("DATABASE_DSN"))
	if conn == "" {
		conn = defaultConnectionString
	}

	migrationsDir := strings.TrimSpace(os.Getenv("MIGRATIONS_DIR"))
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = defaultHTTPAddr
	}

	channelID := strings.TrimSpace(os.Getenv("CHANNEL_ID"))
	if channelID == "" {
		channelID = defaultChannelID
	}

	channelKey := strings.TrimSpace(os.Getenv("CHANNEL_KEY"))
	if channelKey == "" {
		channelKey = defaultChannelKey
	}

	bankName := strings.TrimSpace(os.Getenv("BANK_NAME"))
	if bankName == "" {
		bankName = defaultBankName
	}

	otpTTL := defaultOTPTTL
	if raw := strings.TrimSpace(os.Getenv("OTP_TTL")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse OTP_TTL %q: %w", raw, err)
		}
		if parsed <= 0 {
			return Config{}, fmt.Errorf("OTP_TTL must be positive, got %q", raw)
		}
		otpTTL = parsed
	}

	return Config{
		DatabaseDSN:      normalizeConnectionString(conn),
		MigrationsDir:    migrationsDir,
		HTTPAddr:         httpAddr,
		ChannelID:        channelID,
		ChannelKey:       channelKey,
		BankName:         bankName,
		OTPTTL:           otpTTL,
		NotifyWebhookURL: strings.TrimSpace(os.Getenv("NOTIFY_WEBHOOK_URL")),
	}, nil
}

func normalizeConnectionString(raw string) string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
