package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	Env  string // development, production
	Port string

	// MongoDB
	DBUser    string
	DBPass    string
	DBCluster string
	DBName    string
	MongoURI  string // full connection string; overrides user/pass/cluster

	// Per-request store deadline
	RequestTimeout time.Duration
	// Grace period for in-flight requests on shutdown
	ShutdownTimeout time.Duration

	// Admin guard; empty disables it
	JWTSecret string

	// SendGrid; empty key disables mail
	SendGridAPIKey string
	EmailSender    string

	// CORS, comma-separated; empty allows any origin
	CORSAllowedOrigins string

	// Warnings lists invalid values that were replaced by defaults. They are
	// logged once the logger exists.
	Warnings []string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (c *Config) getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			c.warnf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

func (c *Config) warnf(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{}
	port := getenv("PORT", "5000")
	if _, err := strconv.Atoi(port); err != nil {
		cfg.warnf("invalid PORT %q, using default 5000", port)
		port = "5000"
	}
	cfg.Env = getenv("APP_ENV", "development")
	cfg.Port = port

	cfg.DBUser = getenv("DB_USER", "")
	cfg.DBPass = getenv("DB_PASS", "")
	cfg.DBCluster = getenv("DB_CLUSTER", "cluster0.bnuku.mongodb.net")
	cfg.DBName = getenv("DB_NAME", "BloodLinkDB")
	cfg.MongoURI = getenv("MONGODB_URI", "")

	cfg.RequestTimeout = cfg.getdur("REQUEST_TIMEOUT", 10*time.Second)
	cfg.ShutdownTimeout = cfg.getdur("SHUTDOWN_TIMEOUT", 10*time.Second)

	cfg.JWTSecret = getenv("JWT_SECRET", "")

	cfg.SendGridAPIKey = getenv("SENDGRID_API_KEY", "")
	cfg.EmailSender = getenv("EMAIL_SENDER", "no-reply@bloodlink.app")

	cfg.CORSAllowedOrigins = getenv("CORS_ALLOWED_ORIGINS", "")
	return cfg
}

// DatabaseURI returns the MongoDB connection string. MONGODB_URI wins when set,
// otherwise an Atlas SRV URI is assembled from the percent-encoded credentials
// and cluster host.
func (c *Config) DatabaseURI() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}
	return fmt.Sprintf("mongodb+srv://%s@%s/?retryWrites=true&w=majority&appName=Cluster0",
		url.UserPassword(c.DBUser, c.DBPass).String(), c.DBCluster)
}

// AllowedOrigins splits CORSAllowedOrigins. A nil result means any origin.
func (c *Config) AllowedOrigins() []string {
	if strings.TrimSpace(c.CORSAllowedOrigins) == "" {
		return nil
	}
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
