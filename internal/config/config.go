package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	DefaultTimeZone = "America/Sao_Paulo"

	// Tolerance is the largest per-category difference, in currency units,
	// that is still considered reconciled.
	Tolerance = "0.10"

	// LedgerHeaderMarker identifies the column-name row of a ledger extract.
	LedgerHeaderMarker = "Nat Desp"

	// Positional columns of the ledger extract after the header row.
	// A negative index counts from the last column.
	NatureColumn  = 0
	BalanceColumn = -1

	// A nature-of-expense value needs at least MinNatureDigits digits; the
	// category code is taken from its last CategoryDigits digits.
	MinNatureDigits = 5
	CategoryDigits  = 2

	DefaultCSVDelimiter = ','
	DefaultHTTPPort     = 8080
	MaxUploadBytes      = 64 << 20

	DefaultInboxSchedule = "*/5 * * * *"
	DefaultInboxDir      = "./inbox"
	DefaultOutboxDir     = "./outbox"
	MaxStoredRuns        = 32

	ReportFileName = "Relatorio_Depreciacao_Consolidado.pdf"
	BookFileName   = "Relatorio_Depreciacao_Consolidado.xlsx"
)

// Int reads an integer from a YAML service config map. YAML numbers decode as
// int, environment overrides arrive as strings.
func Int(cfg map[string]interface{}, key string, def int) int {
	if cfg == nil {
		return def
	}
	v, ok := cfg[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		var parsed int
		if _, err := fmt.Sscanf(t, "%d", &parsed); err == nil {
			return parsed
		}
	}
	return def
}

func String(cfg map[string]interface{}, key, def string) string {
	if cfg == nil {
		return def
	}
	if s, ok := cfg[key].(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	return def
}

// ParseDelimiter reads a CSV field delimiter: one character, "tab" or the
// escape "\t". A literal tab is kept as is.
func ParseDelimiter(s string) (rune, error) {
	if s == "\t" {
		return '\t', nil
	}
	trimmed := strings.TrimSpace(s)
	switch strings.ToLower(trimmed) {
	case "tab", `\t`:
		return '\t', nil
	}
	r := []rune(trimmed)
	if len(r) != 1 {
		return 0, fmt.Errorf("invalid csv delimiter %q", s)
	}
	return r[0], nil
}

// Delimiter reads a CSV field delimiter from a service config map, falling
// back to def when the key is unset or invalid.
func Delimiter(cfg map[string]interface{}, key string, def rune) rune {
	s, ok := cfg[key].(string)
	if !ok {
		return def
	}
	r, err := ParseDelimiter(s)
	if err != nil {
		return def
	}
	return r
}

func Duration(cfg map[string]interface{}, key string, def time.Duration) time.Duration {
	if cfg == nil {
		return def
	}
	switch t := cfg[key].(type) {
	case string:
		if d, err := time.ParseDuration(t); err == nil {
			return d
		}
	case int:
		return time.Duration(t) * time.Second
	case float64:
		return time.Duration(t) * time.Second
	}
	return def
}

// Env returns the trimmed environment variable or def when unset.
func Env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// ApplyEnv copies set environment variables over config keys.
func ApplyEnv(cfg map[string]interface{}, overrides map[string]string) map[string]interface{} {
	if cfg == nil {
		cfg = make(map[string]interface{})
	}
	for key, envName := range overrides {
		if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
			cfg[key] = v
		}
	}
	return cfg
}
