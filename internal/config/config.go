package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the trading terminal simulator.
type Config struct {
	Port     int
	LogLevel string

	TickInterval      time.Duration
	ExecutionInterval time.Duration

	AccountEquity  float64
	MarginRate     float64
	VaRFactor      float64
	RiskHistoryCap int
	FeeRate        float64

	ActivationProbability float64
	FillProbability       float64
	PriceStep             float64
	SpreadBps             float64
	MinTick               float64

	LargeOrderThreshold int64
	MaxOrderNotional    float64

	Seed        int64
	SeedDemo    bool
	Environment string
	MarketFile  string
	Market      *Market
	CORSOrigins []string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT: %d out of range", port)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	cfg := &Config{Port: port, LogLevel: logLevel}

	durations := []struct {
		key string
		dst *time.Duration
		def time.Duration
	}{
		{"TICK_INTERVAL", &cfg.TickInterval, 70 * time.Millisecond},
		{"EXECUTION_INTERVAL", &cfg.ExecutionInterval, 260 * time.Millisecond},
		{"READ_TIMEOUT", &cfg.ReadTimeout, 5 * time.Second},
		{"WRITE_TIMEOUT", &cfg.WriteTimeout, 10 * time.Second},
		{"IDLE_TIMEOUT", &cfg.IdleTimeout, 60 * time.Second},
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout, 10 * time.Second},
	}
	for _, d := range durations {
		v, err := getDuration(d.key, d.def)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		if v <= 0 {
			return nil, fmt.Errorf("invalid %s: must be positive", d.key)
		}
		*d.dst = v
	}

	floats := []struct {
		key      string
		dst      *float64
		def      float64
		min, max float64
	}{
		{"ACCOUNT_EQUITY", &cfg.AccountEquity, 50_000, 0, 1e12},
		{"MARGIN_RATE", &cfg.MarginRate, 0.25, 0, 1},
		{"VAR_FACTOR", &cfg.VaRFactor, 0.021, 0, 1},
		{"FEE_RATE", &cfg.FeeRate, 0.0002, 0, 0.1},
		{"ACTIVATION_PROBABILITY", &cfg.ActivationProbability, 0.45, 0, 1},
		{"FILL_PROBABILITY", &cfg.FillProbability, 0.5, 0, 1},
		{"PRICE_STEP", &cfg.PriceStep, 0.25, 0, 1e6},
		{"SPREAD_BPS", &cfg.SpreadBps, 1, 0, 10_000},
		{"MIN_TICK", &cfg.MinTick, 0.01, 0.0001, 1e6},
		{"MAX_ORDER_NOTIONAL", &cfg.MaxOrderNotional, 5_000_000, 0, 1e15},
	}
	for _, f := range floats {
		v, err := getFloat(f.key, f.def)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", f.key, err)
		}
		if v < f.min || v > f.max {
			return nil, fmt.Errorf("invalid %s: %v outside [%v, %v]", f.key, v, f.min, f.max)
		}
		*f.dst = v
	}

	cfg.RiskHistoryCap, err = getInt("RISK_HISTORY_CAP", 2000)
	if err != nil {
		return nil, fmt.Errorf("invalid RISK_HISTORY_CAP: %w", err)
	}
	if cfg.RiskHistoryCap < 1 {
		return nil, fmt.Errorf("invalid RISK_HISTORY_CAP: must be at least 1")
	}

	threshold, err := getInt("LARGE_ORDER_THRESHOLD", 1000)
	if err != nil {
		return nil, fmt.Errorf("invalid LARGE_ORDER_THRESHOLD: %w", err)
	}
	if threshold < 1 {
		return nil, fmt.Errorf("invalid LARGE_ORDER_THRESHOLD: must be at least 1")
	}
	cfg.LargeOrderThreshold = int64(threshold)

	cfg.Seed, err = getInt64("SEED", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid SEED: %w", err)
	}

	cfg.SeedDemo, err = getBool("SEED_DEMO", true)
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_DEMO: %w", err)
	}

	cfg.Environment = strings.ToUpper(getStr("ENVIRONMENT", "SIM"))
	if !isValidEnvironment(cfg.Environment) {
		return nil, fmt.Errorf("invalid ENVIRONMENT: %q, must be one of: SIM, PAPER, LIVE", cfg.Environment)
	}

	for _, o := range strings.Split(getStr("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	cfg.MarketFile = getStr("MARKET_FILE", "")
	if cfg.MarketFile != "" {
		m, err := LoadMarket(cfg.MarketFile)
		if err != nil {
			return nil, fmt.Errorf("invalid MARKET_FILE: %w", err)
		}
		cfg.Market = m
	} else {
		cfg.Market = DefaultMarket()
	}

	return cfg, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getInt64(key string, defaultVal int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseBool(v)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

func isValidEnvironment(env string) bool {
	switch env {
	case "SIM", "PAPER", "LIVE":
		return true
	}
	return false
}
