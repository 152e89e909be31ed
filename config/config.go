package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

const DefaultFile = "facility-tests.json5"

type Config struct {
	// BaseURL is the facility API under test.
	BaseURL        string `json:"baseUrl"`
	ResultsDir     string `json:"resultsDir"`
	Environment    string `json:"environment"`
	RequestTimeout string `json:"requestTimeout"`
	StatusTimeout  string `json:"statusTimeout"`

	Blog BlogConfig `json:"blog"`
	Mock MockConfig `json:"mock"`
	Log  LogConfig  `json:"log"`
}

type BlogConfig struct {
	URL       string   `json:"url"`
	Browsers  []string `json:"browsers"`
	Headless  *bool    `json:"headless"`
	OutputDir string   `json:"outputDir"`
}

type MockConfig struct {
	Port int `json:"port"`
	// Store is "memory" or "sqlite:<path>".
	Store string `json:"store"`
	Seed  *bool  `json:"seed"`
}

type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

func Default() Config {
	headless, seed := true, true
	return Config{
		BaseURL:        "http://localhost:8081",
		ResultsDir:     "allure-results",
		Environment:    "test",
		RequestTimeout: "30s",
		StatusTimeout:  "10s",
		Blog: BlogConfig{
			URL:       "https://www.pointr.tech/blog",
			Browsers:  []string{"chrome", "firefox"},
			Headless:  &headless,
			OutputDir: ".",
		},
		Mock: MockConfig{Port: 8081, Store: "memory", Seed: &seed},
		Log:  LogConfig{Level: "info"},
	}
}

func (c Config) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

func (c Config) StatusTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.StatusTimeout)
	return d
}

func (b BlogConfig) IsHeadless() bool {
	return b.Headless == nil || *b.Headless
}

func (m MockConfig) SeedEnabled() bool {
	return m.Seed == nil || *m.Seed
}

// Load layers, from lowest to highest priority: the defaults, the file at path, the file's
// ".local" sibling (e.g. facility-tests.local.json5), and environment variables. Missing
// files are skipped.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path != "" {
		fromFiles, err := readConfig[Config](path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading configuration: %w", err)
		}
		if err := mergeOverride(&cfg, fromFiles); err != nil {
			return cfg, fmt.Errorf("merging configuration: %w", err)
		}
	}
	applyEnv(&cfg, lookupEnv)
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	for name, value := range map[string]string{"requestTimeout": c.RequestTimeout, "statusTimeout": c.StatusTimeout} {
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			return fmt.Errorf("invalid %s %q: must be a positive duration such as \"30s\"", name, value)
		}
	}
	if c.Mock.Store != "memory" && !strings.HasPrefix(c.Mock.Store, "sqlite:") {
		return fmt.Errorf("invalid mock store %q: expected \"memory\" or \"sqlite:<path>\"", c.Mock.Store)
	}
	return nil
}

func applyEnv(c *Config, lookupEnv func(string) (string, bool)) {
	first := func(names ...string) (string, bool) {
		for _, n := range names {
			if v, ok := lookupEnv(n); ok && v != "" {
				return v, true
			}
		}
		return "", false
	}
	if v, ok := first("FACILITY_BASE_URL", "PLAYWRIGHT_BASE_URL"); ok {
		c.BaseURL = v
	}
	if v, ok := first("ALLURE_RESULTS_DIR"); ok {
		c.ResultsDir = v
	}
	if v, ok := first("TEST_ENVIRONMENT", "NODE_ENV"); ok {
		c.Environment = v
	}
	if v, ok := first("BLOG_URL", "BASE_URL"); ok {
		c.Blog.URL = v
	}
	if v, ok := first("HEADLESS"); ok {
		headless := v != "false"
		c.Blog.Headless = &headless
	}
	if v, ok := first("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
}

// mergeOverride copies the non-empty fields of src over dst. Pointer fields are replaced rather
// than merged into, so an explicit false in a file still wins over a true default.
func mergeOverride[T any](dst *T, src T) error {
	return mergo.Merge(dst, src, mergo.WithOverride, mergo.WithoutDereference)
}

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// readConfig merges <name>.<ext> with <name>.local.<ext>, the local file taking priority. It
// returns os.ErrNotExist if neither file exists.
func readConfig[T any](name string) (T, error) {
	var out T
	allNotFound := true

	prefix, ext := splitExt(filepath.Base(name))

	defaultFile, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(defaultFile) > 0 {
		if err := json5.Unmarshal(defaultFile, &out); err != nil {
			return out, fmt.Errorf("%s: %w", name, err)
		}
		allNotFound = false
	}

	localPath := filepath.Join(filepath.Dir(name), fmt.Sprintf("%s.local.%s", prefix, ext))
	localFile, err := os.ReadFile(localPath)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(localFile) > 0 {
		var override T
		if err := json5.Unmarshal(localFile, &override); err != nil {
			return out, fmt.Errorf("%s: %w", localPath, err)
		}
		if err := mergeOverride(&out, override); err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localPath)
		allNotFound = false
	}

	if allNotFound {
		return out, os.ErrNotExist
	}
	return out, nil
}
