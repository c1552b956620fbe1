// Package config loads server settings from the environment and optional
// .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ironsheep/circularity-mcp/internal/detection"
	"github.com/ironsheep/circularity-mcp/internal/estimate"
	"github.com/ironsheep/circularity-mcp/internal/logger"
)

// EnvPrefix prefixes every variable read by Load.
const EnvPrefix = "CIRCULARITY_MCP_"

// DefaultEnvFile is read by Load when no file is named. It may be absent.
const DefaultEnvFile = ".env"

// Config holds runtime settings. Tool arguments override the matching
// fields per call.
type Config struct {
	LogLevel  string
	LogFormat string

	// Segmentation
	EdgeSize   int
	RadiusStep int

	// Seed for the estimators. Zero seeds from the clock.
	Seed uint64

	// Painter
	Superpixels int
	Compactness float64

	// Simulation
	MaxHistories int
	Criterion    float64
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    logger.FormatJSON,
		EdgeSize:     detection.DefaultEdgeSize,
		RadiusStep:   detection.DefaultRadiusStep,
		Seed:         0,
		Superpixels:  detection.DefaultSuperpixels,
		Compactness:  detection.DefaultCompactness,
		MaxHistories: estimate.DefaultMaxHistories,
		Criterion:    estimate.DefaultCriterion,
	}
}

// Validate clamps values to safe ranges and rejects an unknown log level
// or format.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat != logger.FormatJSON && c.LogFormat != logger.FormatConsole {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.EdgeSize <= 0 {
		c.EdgeSize = detection.DefaultEdgeSize
	}
	if c.RadiusStep <= 0 {
		c.RadiusStep = detection.DefaultRadiusStep
	}
	if c.Superpixels <= 0 {
		c.Superpixels = detection.DefaultSuperpixels
	}
	if c.Compactness <= 0 {
		c.Compactness = detection.DefaultCompactness
	}
	if c.MaxHistories <= 0 {
		c.MaxHistories = estimate.DefaultMaxHistories
	}
	if c.Criterion <= 0 {
		c.Criterion = estimate.DefaultCriterion
	}
	return nil
}

// Load builds a Config from defaults, then the given .env files (or
// DefaultEnvFile if it exists), then the process environment. Process
// variables win over file entries. Files never modify the process
// environment.
func Load(files ...string) (*Config, error) {
	fileEnv := map[string]string{}
	if len(files) == 0 {
		env, err := godotenv.Read(DefaultEnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", DefaultEnvFile, err)
		}
		fileEnv = env
	} else {
		env, err := godotenv.Read(files...)
		if err != nil {
			return nil, fmt.Errorf("failed to read env files: %w", err)
		}
		fileEnv = env
	}

	return FromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	})
}

// FromLookup builds and validates a Config from defaults overridden by
// the variables lookup reports.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	cfg := DefaultConfig()
	p := parser{lookup: lookup}

	p.stringVar("LOG_LEVEL", &cfg.LogLevel)
	p.stringVar("LOG_FORMAT", &cfg.LogFormat)
	p.intVar("EDGE_SIZE", &cfg.EdgeSize)
	p.intVar("RADIUS_STEP", &cfg.RadiusStep)
	p.uint64Var("SEED", &cfg.Seed)
	p.intVar("SUPERPIXELS", &cfg.Superpixels)
	p.floatVar("COMPACTNESS", &cfg.Compactness)
	p.intVar("MAX_HISTORIES", &cfg.MaxHistories)
	p.floatVar("CRITERION", &cfg.Criterion)

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type parser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *parser) get(name string) (string, bool) {
	v, ok := p.lookup(EnvPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (p *parser) fail(name, v string, err error) {
	p.errs = append(p.errs, fmt.Errorf("invalid %s%s=%q: %w", EnvPrefix, name, v, err))
}

func (p *parser) stringVar(name string, dst *string) {
	if v, ok := p.get(name); ok {
		*dst = v
	}
}

func (p *parser) intVar(name string, dst *int) {
	if v, ok := p.get(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			p.fail(name, v, err)
			return
		}
		*dst = n
	}
}

func (p *parser) uint64Var(name string, dst *uint64) {
	if v, ok := p.get(name); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			p.fail(name, v, err)
			return
		}
		*dst = n
	}
}

func (p *parser) floatVar(name string, dst *float64) {
	if v, ok := p.get(name); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			p.fail(name, v, err)
			return
		}
		*dst = f
	}
}
