// Package config loads the engine's configuration surface from the
// environment, the way the rest of the pack's services do.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all engine configuration.
type Config struct {
	App          AppConfig
	Logging      LoggingConfig
	Physics      PhysicsConfig
	Grid         GridConfig
	SpawnRates   SpawnRatesConfig
	ProvablyFair ProvablyFairConfig
	Pool         PoolConfig
	Cache        CacheConfig
	Session      SessionConfig
}

// AppConfig holds process-level settings.
type AppConfig struct {
	Env  string
	Name string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string
	Format string
}

// PhysicsConfig holds the three-body integrator's tunables (§4.1, §6).
type PhysicsConfig struct {
	RevealDuration time.Duration
	MintDuration   time.Duration
	Timestep       time.Duration
	G              float64
	Softening      float64
	DriftWarnPct   float64
}

// GridConfig holds the reel-layout constraints (§3, §6).
type GridConfig struct {
	ReelCount          int
	SymbolsPerReel     int
	VisibleRows        int
	BufferRows         int
	Symbols            []string
	GoldAllowedColumns []int
}

// SpawnRatesConfig holds the mapper's per-cell spawn probabilities (§4.4).
type SpawnRatesConfig struct {
	WildChance  float64
	BonusChance float64
	GoldChance  float64
}

// ProvablyFairConfig holds the server secret and proof-path algorithm choice.
type ProvablyFairConfig struct {
	// ServerSecret signs proofs (§3 Proof.signature). Opaque, process-wide,
	// never logged (§5 Shared resources).
	ServerSecret string
	// HashAlgorithm selects the HKDF hash for C2 only; the proof path is
	// always sha256 (§6).
	HashAlgorithm string
	// HouseSeedStrategy selects how the commitment pool mints fresh house
	// seeds: "crypto" draws straight from crypto/rand, "physics" derives the
	// seed from a three-body simulation digest (§9 "it is not essential that
	// the chaos come from gravity" — both are valid commitments).
	HouseSeedStrategy string
}

// PoolConfig holds the commitment pool's sizing (C7, §4.7).
type PoolConfig struct {
	TargetSize int
}

// CacheConfig holds the cache adapter's default TTLs (§4.9, §5).
type CacheConfig struct {
	CommitmentTTL time.Duration
}

// SessionConfig holds the session state machine's TTL and history bound
// (§4.8, §3).
type SessionConfig struct {
	SessionTTL     time.Duration
	MaxHistorySize int
}

// Load reads configuration from the environment, optionally from a .env
// file in non-production environments.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg := &Config{
		App: AppConfig{
			Env:  getEnv("APP_ENV", "development"),
			Name: getEnv("APP_NAME", "three-body-entropy-engine"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Physics: PhysicsConfig{
			RevealDuration: getEnvAsDuration("PHYSICS_REVEAL_DURATION", 3*time.Second),
			MintDuration:   getEnvAsDuration("PHYSICS_MINT_DURATION", 5*time.Second),
			Timestep:       getEnvAsDuration("PHYSICS_TIMESTEP", 10*time.Millisecond),
			G:              getEnvAsFloat("PHYSICS_G", 1.0),
			Softening:      getEnvAsFloat("PHYSICS_SOFTENING", 0.01),
			DriftWarnPct:   getEnvAsFloat("PHYSICS_DRIFT_WARN_PCT", 1.0),
		},
		Grid: GridConfig{
			ReelCount:          getEnvAsInt("GRID_REEL_COUNT", 5),
			SymbolsPerReel:     getEnvAsInt("GRID_SYMBOLS_PER_REEL", 32),
			VisibleRows:        getEnvAsInt("GRID_VISIBLE_ROWS", 6),
			BufferRows:         getEnvAsInt("GRID_BUFFER_ROWS", 4),
			Symbols:            getEnvAsStringSlice("GRID_SYMBOLS", "wild,bonus,A,K,Q,J,ten,nine"),
			GoldAllowedColumns: getEnvAsIntSlice("GRID_GOLD_ALLOWED_COLUMNS", "0,1,2,3,4"),
		},
		SpawnRates: SpawnRatesConfig{
			WildChance:  getEnvAsFloat("SPAWN_WILD_CHANCE", 0.03),
			BonusChance: getEnvAsFloat("SPAWN_BONUS_CHANCE", 0.02),
			GoldChance:  getEnvAsFloat("SPAWN_GOLD_CHANCE", 0.05),
		},
		ProvablyFair: ProvablyFairConfig{
			ServerSecret:      getEnv("PF_SERVER_SECRET", "change-this-secret-in-production"),
			HashAlgorithm:     getEnv("PF_HKDF_HASH", "sha256"),
			HouseSeedStrategy: getEnv("PF_HOUSE_SEED_STRATEGY", "crypto"),
		},
		Pool: PoolConfig{
			TargetSize: getEnvAsInt("POOL_TARGET_SIZE", 100),
		},
		Cache: CacheConfig{
			CommitmentTTL: getEnvAsDuration("CACHE_COMMITMENT_TTL", 5*time.Minute),
		},
		Session: SessionConfig{
			SessionTTL:     getEnvAsDuration("SESSION_TTL", 30*time.Minute),
			MaxHistorySize: getEnvAsInt("SESSION_MAX_HISTORY_SIZE", 50),
		},
	}

	if cfg.ProvablyFair.ServerSecret == "change-this-secret-in-production" && cfg.App.Env == "production" {
		return nil, fmt.Errorf("PF_SERVER_SECRET must be set in production")
	}

	switch cfg.ProvablyFair.HashAlgorithm {
	case "sha256", "sha384", "sha512":
	default:
		return nil, fmt.Errorf("PF_HKDF_HASH must be one of sha256, sha384, sha512, got %q", cfg.ProvablyFair.HashAlgorithm)
	}

	switch cfg.ProvablyFair.HouseSeedStrategy {
	case "crypto", "physics":
	default:
		return nil, fmt.Errorf("PF_HOUSE_SEED_STRATEGY must be one of crypto, physics, got %q", cfg.ProvablyFair.HouseSeedStrategy)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsStringSlice(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvAsIntSlice(key, defaultValue string) []int {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if n, err := strconv.Atoi(p); err == nil {
			out = append(out, n)
		}
	}
	return out
}
