package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort string

	// Remote sheet backing store. CredsB64 is the service-account JSON,
	// base64-encoded, as delivered by the secrets store.
	SheetID   string
	Worksheet string
	CredsB64  string

	// Local workbook fallback for development; when set it takes the
	// place of the remote sheet.
	WorkbookPath string

	RedisAddr string
	RedisDB   int

	AdminUser string
	AdminPass string

	CacheTTLSecs    int
	SessionTTLSecs  int
	StoreTimeoutSec int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	return &Config{
		AppPort: getenv("APP_PORT", "8080"),

		SheetID:      getenv("SHEET_ID", ""),
		Worksheet:    getenv("WORKSHEET_NAME", "Worklog"),
		CredsB64:     getenv("SHEET_CREDENTIALS_B64", ""),
		WorkbookPath: getenv("WORKBOOK_PATH", ""),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getint("REDIS_DB", 0),

		AdminUser: getenv("ADMIN_USER", "admin"),
		AdminPass: getenv("ADMIN_PASS", ""),

		CacheTTLSecs:    getint("CACHE_TTL_SECONDS", 3),
		SessionTTLSecs:  getint("SESSION_TTL_SECONDS", 3600),
		StoreTimeoutSec: getint("STORE_TIMEOUT_SECONDS", 10),
	}
}

// Validate covers everything that should stop startup, so that a broken
// credential blob surfaces as a blocking message rather than a failed
// first request.
func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.WorkbookPath == "" {
		if c.SheetID == "" {
			return errors.New("missing SHEET_ID (or WORKBOOK_PATH for local runs)")
		}
		if c.Worksheet == "" {
			return errors.New("missing WORKSHEET_NAME")
		}
		if _, err := c.Credentials(); err != nil {
			return err
		}
	}
	if c.AdminPass == "" {
		return errors.New("missing ADMIN_PASS")
	}
	if c.CacheTTLSecs < 1 || c.CacheTTLSecs > 5 {
		return fmt.Errorf("CACHE_TTL_SECONDS %d out of range [1,5]", c.CacheTTLSecs)
	}
	return nil
}

// Credentials decodes the base64 service-account blob and checks it is
// JSON before anything tries to authenticate with it.
func (c *Config) Credentials() ([]byte, error) {
	if c.CredsB64 == "" {
		return nil, errors.New("missing SHEET_CREDENTIALS_B64")
	}
	raw, err := base64.StdEncoding.DecodeString(c.CredsB64)
	if err != nil {
		return nil, fmt.Errorf("SHEET_CREDENTIALS_B64 is not valid base64: %w", err)
	}
	if !json.Valid(raw) {
		return nil, errors.New("SHEET_CREDENTIALS_B64 does not decode to JSON")
	}
	return raw, nil
}

func (c *Config) CacheTTL() time.Duration   { return time.Duration(c.CacheTTLSecs) * time.Second }
func (c *Config) SessionTTL() time.Duration { return time.Duration(c.SessionTTLSecs) * time.Second }
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutSec) * time.Second
}
