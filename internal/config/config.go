package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DataDir   string `json:"data_dir"`
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
	LLM       struct {
		Provider         string `json:"provider"`
		APIKey           string `json:"api_key"`
		BaseURL          string `json:"base_url"`
		Model            string `json:"model"`
		MaxContextTokens int    `json:"max_context_tokens"`
		OutputReserve    int    `json:"output_reserve"`
	} `json:"llm"`
	Storage struct {
		Backend   string `json:"backend"`
		RedisAddr string `json:"redis_addr"`
		RedisDB   int    `json:"redis_db"`
		Prefix    string `json:"prefix"`
	} `json:"storage"`
	HTTP struct {
		Listen         string   `json:"listen"`
		AllowedOrigins []string `json:"allowed_origins"`
	} `json:"http"`
	Chat struct {
		DefaultMode string `json:"default_mode"`
		Personalize bool   `json:"personalize"`
	} `json:"chat"`
}

// DefaultPath is the config file under the user's home directory.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".brainassist", "config.json")
}

func defaults() *Config {
	cfg := &Config{
		DataDir:   filepath.Join(os.Getenv("HOME"), ".brainassist"),
		LogLevel:  "info",
		LogFormat: "text",
	}
	cfg.LLM.Provider = "gemini"
	cfg.LLM.BaseURL = "https://api.openai.com/v1"
	cfg.LLM.MaxContextTokens = 1000000
	cfg.LLM.OutputReserve = 8192
	cfg.Storage.Backend = "file"
	cfg.Storage.RedisAddr = "localhost:6379"
	cfg.Storage.Prefix = "brainassist_"
	cfg.HTTP.Listen = "127.0.0.1:8080"
	cfg.Chat.DefaultMode = "learning"
	cfg.Chat.Personalize = true
	return cfg
}

// Load reads the config at path, writing defaults when the file is missing.
// Values from the environment (and an optional .env in the working
// directory) take precedence over the file.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	}

	// godotenv never overrides variables already set in the environment
	_ = godotenv.Load()
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	} else if key := os.Getenv("API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.LLM.Provider == "openai" {
		cfg.LLM.APIKey = key
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.LLM.BaseURL = baseURL
	}
	if addr := os.Getenv("BRAINASSIST_REDIS_ADDR"); addr != "" {
		cfg.Storage.Backend = "redis"
		cfg.Storage.RedisAddr = addr
	}
	if listen := os.Getenv("BRAINASSIST_LISTEN"); listen != "" {
		cfg.HTTP.Listen = listen
	}
}

// Save writes cfg to path atomically, creating the parent directory.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// ToMap converts cfg to its generic JSON form.
func ToMap(cfg *Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ListValues returns cfg as dot-keyed values, optionally masking secrets.
func ListValues(cfg *Config, mask bool) (map[string]any, error) {
	m, err := ToMap(cfg)
	if err != nil {
		return nil, err
	}
	flat := Flatten(m)
	if mask {
		flat = MaskSecrets(flat)
	}
	return flat, nil
}

// GetValue loads the config at path and returns the value under key.
func GetValue(path, key string) (any, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	flat, err := ListValues(cfg, false)
	if err != nil {
		return nil, err
	}
	// hand-set keys the struct does not know only live in the file
	if raw, err := readRaw(path); err == nil {
		for k, v := range Flatten(raw) {
			if _, ok := flat[k]; !ok {
				flat[k] = v
			}
		}
	}
	v, ok := flat[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
	return v, nil
}

// SetValue stores value under key in the file at path. The value is parsed
// as JSON when possible (numbers, booleans, lists) and kept as a string
// otherwise. The file must already exist.
func SetValue(path, key, value string) error {
	raw, err := readRaw(path)
	if err != nil {
		return err
	}
	flat := Flatten(raw)
	flat[key] = parseValue(value)
	data, err := json.MarshalIndent(Unflatten(flat), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return writeFile(path, data)
}

func readRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return m, nil
}

func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &v); err == nil {
		switch v.(type) {
		case float64, bool, []any, map[string]any:
			return v
		}
	}
	return s
}
