package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Model        string `toml:"model"`
	SummaryModel string `toml:"summary_model"`
}

type HistoryConfig struct {
	MaxPromptTokens  int `toml:"max_prompt_tokens"`
	RecentTurns      int `toml:"recent_turns"`
	SummaryMaxTokens int `toml:"summary_max_tokens"`
}

type MaestroConfig struct {
	Host         string `toml:"host"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

type PlannerConfig struct {
	URL    string `toml:"url"`
	Secret string `toml:"secret"`
}

type MapsConfig struct {
	Dir     string `toml:"dir"`
	BaseURL string `toml:"base_url"`
}

type Config struct {
	SystemPromptPath string        `toml:"system_prompt"`
	LLM              LLMConfig     `toml:"llm"`
	History          HistoryConfig `toml:"history"`
	Maestro          MaestroConfig `toml:"maestro"`
	Planner          PlannerConfig `toml:"planner"`
	Maps             MapsConfig    `toml:"maps"`
}

func Default() Config {
	return Config{
		LLM: LLMConfig{
			Model:        "gpt-4o-mini",
			SummaryModel: "gpt-3.5-turbo",
		},
		History: HistoryConfig{
			MaxPromptTokens:  15000,
			RecentTurns:      3,
			SummaryMaxTokens: 500,
		},
		Maestro: MaestroConfig{
			Host: "qa.cloud.cambiumnetworks.com",
		},
		Planner: PlannerConfig{
			URL: "https://apitest.lp.cambiumnetworks.com/cnmaestro/v1/sm_performance",
		},
		Maps: MapsConfig{
			Dir: filepath.Join(defaultDataDir(), "maps"),
		},
	}
}

// LoadOrCreate reads the config file, writing defaults first if it does not
// exist, then applies environment overrides on top.
func LoadOrCreate(path string) (Config, error) {
	config := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return config, err
			}

			configData, err := toml.Marshal(config)
			if err != nil {
				return config, err
			}

			if err := os.WriteFile(path, configData, 0o644); err != nil {
				return config, err
			}

			return applyEnv(config), nil
		}

		return config, err
	}

	configData, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err := toml.Unmarshal(configData, &config); err != nil {
		return config, err
	}

	return applyEnv(config), nil
}

// applyEnv layers the documented environment variables over the file config.
func applyEnv(config Config) Config {
	if v := envString("OPENAI_MODEL"); v != "" {
		config.LLM.Model = v
	}
	if v := envString("SUMMARY_MODEL"); v != "" {
		config.LLM.SummaryModel = v
	}
	if v, ok := envInt("MAX_PROMPT_TOKENS"); ok {
		config.History.MaxPromptTokens = v
	}
	if v, ok := envInt("RECENT_TURNS"); ok {
		config.History.RecentTurns = v
	}
	if v, ok := envInt("SUMMARY_MAX_TOK"); ok {
		config.History.SummaryMaxTokens = v
	}
	if v := envString("CNMAESTRO_URL"); v != "" {
		config.Maestro.Host = v
	}
	if v := envString("CNMAESTRO_CLIENT_ID"); v != "" {
		config.Maestro.ClientID = v
	}
	if v := envString("CNMAESTRO_CLIENT_SECRET"); v != "" {
		config.Maestro.ClientSecret = v
	}
	if v := envString("LINK_PLANNER_URL"); v != "" {
		config.Planner.URL = v
	}
	if v := envString("LINK_PLANNER_SECRET"); v != "" {
		config.Planner.Secret = v
	}
	if v := envString("MAPS_DIR"); v != "" {
		config.Maps.Dir = v
	}
	if v := envString("MAPS_BASE_URL"); v != "" {
		config.Maps.BaseURL = v
	}

	return config
}

func envString(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envInt(key string) (int, bool) {
	raw := envString(key)
	if raw == "" {
		return 0, false
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.toml")
}

func defaultDataDir() string {
	homeDir, _ := os.UserHomeDir()

	if homeDir == "" {
		return ".netwave"
	}

	return filepath.Join(homeDir, ".netwave")
}
