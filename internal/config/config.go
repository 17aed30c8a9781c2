// Package config loads researchdesk configuration from
// <workspace>/.desk/config.json. The file is optional; missing keys fall back
// to defaults and, for credentials, to environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Dir is the workspace-relative directory holding config and state.
const Dir = ".desk"

// Paths configures where each document kind lives, workspace-relative with
// forward slashes.
type Paths struct {
	Seeds     string `json:"seeds,omitempty"`
	Plans     string `json:"plans,omitempty"`
	Reports   string `json:"reports,omitempty"`
	Sources   string `json:"sources,omitempty"`
	Topics    string `json:"topics,omitempty"`
	Templates string `json:"templates,omitempty"`
}

// Gatekeeper holds assessment behavior settings.
type Gatekeeper struct {
	// PromoteThreshold is the minimum score at which a seed qualifies for
	// promotion to a research plan.
	PromoteThreshold int `json:"promote_threshold,omitempty"`
	// AutoPromote promotes qualifying seeds immediately after scoring.
	AutoPromote bool `json:"auto_promote,omitempty"`
}

// Config is the full user configuration.
type Config struct {
	// Provider selects the generation backend: ollama, openai, anthropic,
	// gemini or local.
	Provider string `json:"provider,omitempty"`

	OpenAIAPIKey    string `json:"openai_api_key,omitempty"`
	AnthropicAPIKey string `json:"anthropic_api_key,omitempty"`
	GeminiAPIKey    string `json:"gemini_api_key,omitempty"`
	OllamaEndpoint  string `json:"ollama_endpoint,omitempty"`
	LocalEndpoint   string `json:"local_endpoint,omitempty"`

	// Model overrides the provider's default model when set.
	Model string `json:"model,omitempty"`

	Paths      Paths      `json:"paths,omitempty"`
	Gatekeeper Gatekeeper `json:"gatekeeper,omitempty"`

	Debug bool `json:"debug,omitempty"`

	// Workspace is the root directory; set by Load, never persisted.
	Workspace string `json:"-"`
}

// Default returns the configuration used when no config file exists.
func Default(workspace string) *Config {
	return &Config{
		Provider:       "ollama",
		OllamaEndpoint: "http://localhost:11434",
		Paths: Paths{
			Seeds:     "01_Inbox/Seeds",
			Plans:     "02_Research/Plans",
			Reports:   "02_Research/Reports",
			Sources:   "02_Research/Sources",
			Topics:    "02_Research/Topics",
			Templates: "00_System/Templates",
		},
		Gatekeeper: Gatekeeper{PromoteThreshold: 70},
		Workspace:  workspace,
	}
}

// Load reads <workspace>/.desk/config.json. A missing file yields defaults;
// a malformed file is an error rather than a silent fallback.
func Load(workspace string) (*Config, error) {
	cfg := Default(workspace)

	path := filepath.Join(workspace, Dir, "config.json")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.Workspace = workspace
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// Save writes the configuration to <workspace>/.desk/config.json.
func (c *Config) Save() error {
	dir := filepath.Join(c.Workspace, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// applyDefaults fills fields the config file left empty. Unmarshal overwrote
// defaults only for keys present in the file, but a file written by an older
// version may carry empty strings.
func (c *Config) applyDefaults() {
	def := Default(c.Workspace)
	if c.Provider == "" {
		c.Provider = def.Provider
	}
	if c.OllamaEndpoint == "" {
		c.OllamaEndpoint = def.OllamaEndpoint
	}
	if c.Paths.Seeds == "" {
		c.Paths.Seeds = def.Paths.Seeds
	}
	if c.Paths.Plans == "" {
		c.Paths.Plans = def.Paths.Plans
	}
	if c.Paths.Reports == "" {
		c.Paths.Reports = def.Paths.Reports
	}
	if c.Paths.Sources == "" {
		c.Paths.Sources = def.Paths.Sources
	}
	if c.Paths.Topics == "" {
		c.Paths.Topics = def.Paths.Topics
	}
	if c.Paths.Templates == "" {
		c.Paths.Templates = def.Paths.Templates
	}
	if c.Gatekeeper.PromoteThreshold == 0 {
		c.Gatekeeper.PromoteThreshold = def.Gatekeeper.PromoteThreshold
	}
}

// applyEnv fills credentials from the environment when the file has none.
// File values win so a workspace can pin its own keys.
func (c *Config) applyEnv() {
	if c.OpenAIAPIKey == "" {
		c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.AnthropicAPIKey == "" {
		c.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if ep := os.Getenv("OLLAMA_ENDPOINT"); ep != "" && c.OllamaEndpoint == "http://localhost:11434" {
		c.OllamaEndpoint = ep
	}
}

// DocumentFolders returns the configured document folders in a stable order,
// topics first so rebuilds can resolve topic references.
func (c *Config) DocumentFolders() []string {
	return []string{
		c.Paths.Topics,
		c.Paths.Seeds,
		c.Paths.Plans,
		c.Paths.Reports,
		c.Paths.Sources,
	}
}
