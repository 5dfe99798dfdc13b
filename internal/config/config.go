// Package config loads the editor subsystem configuration. Settings come
// from a TOML file; every field has a default so running without one works.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/DragonRuins/hubdoc/pkg/resync"
)

// Default hubdoc.toml content.
const DefaultConfig = `
[editor]
editable = true

[autosave]
debounce_ms = 1500
grace_ms = 500

[popup]
search_debounce_ms = 200
search_limit = 8

[mermaid]
render_debounce_ms = 500

[toc]
rescan_delay_ms = 500
top_offset = 64
bottom_margin_percent = 70

[api]
base_url = "http://localhost:8080"
`

var (
	// Lazy-load configuration and ensure a single read
	configOnce      resync.Once
	configSingleton *Config
)

// Note: Fields must be public for toml package to unmarshall
type ConfigFile struct {
	Editor   ConfigEditor
	Autosave ConfigAutosave
	Popup    ConfigPopup
	Mermaid  ConfigMermaid
	Toc      ConfigToc
	API      ConfigAPI
}

type ConfigEditor struct {
	Editable bool
}

type ConfigAutosave struct {
	DebounceMs int `toml:"debounce_ms"`
	GraceMs    int `toml:"grace_ms"`
}

type ConfigPopup struct {
	SearchDebounceMs int `toml:"search_debounce_ms"`
	SearchLimit      int `toml:"search_limit"`
}

type ConfigMermaid struct {
	RenderDebounceMs int `toml:"render_debounce_ms"`
}

type ConfigToc struct {
	RescanDelayMs       int `toml:"rescan_delay_ms"`
	TopOffset           int `toml:"top_offset"`
	BottomMarginPercent int `toml:"bottom_margin_percent"`
}

type ConfigAPI struct {
	BaseURL string `toml:"base_url"`
	Token   string
}

// Config is the loaded configuration plus its origin.
type Config struct {
	// Path of the file the configuration was read from; empty when running
	// on defaults.
	Path       string
	ConfigFile ConfigFile
}

// CurrentConfig loads the configuration on first use. The file is looked up
// in $HUBDOC_CONFIG, then ./hubdoc.toml; a missing file means defaults.
func CurrentConfig() *Config {
	configOnce.Do(func() {
		var err error
		configSingleton, err = readConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to read current configuration: %v\n", err)
			os.Exit(1)
		}
	})
	return configSingleton
}

// Reset forces the next CurrentConfig call to re-read. Tests only.
func Reset() {
	configOnce.Reset()
	configSingleton = nil
}

func readConfig() (*Config, error) {
	path, explicit := configPath()
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if explicit {
			return nil, fmt.Errorf("config file %s not found", path)
		}
		file, err := parseConfigFile(DefaultConfig)
		if err != nil {
			return nil, fmt.Errorf("default configuration is broken: %v", err)
		}
		return &Config{ConfigFile: *file}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", path, err)
	}
	defaults, err := parseConfigFile(DefaultConfig)
	if err != nil {
		return nil, fmt.Errorf("default configuration is broken: %v", err)
	}
	file, err := parseConfigFileWithDefaults(string(content), defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v", path, err)
	}
	return &Config{Path: path, ConfigFile: *file}, nil
}

func configPath() (path string, explicit bool) {
	if path, ok := os.LookupEnv("HUBDOC_CONFIG"); ok {
		abspath, err := filepath.Abs(path)
		if err == nil {
			return abspath, true
		}
		return path, true
	}
	return "hubdoc.toml", false
}

func parseConfigFile(content string) (*ConfigFile, error) {
	r := strings.NewReader(content)
	d := toml.NewDecoder(r)
	d.DisallowUnknownFields()
	var result ConfigFile
	err := d.Decode(&result)
	return &result, err
}

// parseConfigFileWithDefaults decodes over a pre-populated struct so absent
// sections keep their defaults.
func parseConfigFileWithDefaults(content string, defaults *ConfigFile) (*ConfigFile, error) {
	result := *defaults
	d := toml.NewDecoder(strings.NewReader(content))
	d.DisallowUnknownFields()
	if err := d.Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Config) AutosaveDebounce() time.Duration {
	return time.Duration(c.ConfigFile.Autosave.DebounceMs) * time.Millisecond
}

func (c *Config) AutosaveGrace() time.Duration {
	return time.Duration(c.ConfigFile.Autosave.GraceMs) * time.Millisecond
}

func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.ConfigFile.Popup.SearchDebounceMs) * time.Millisecond
}

func (c *Config) SearchLimit() int {
	return c.ConfigFile.Popup.SearchLimit
}

func (c *Config) MermaidRenderDebounce() time.Duration {
	return time.Duration(c.ConfigFile.Mermaid.RenderDebounceMs) * time.Millisecond
}

func (c *Config) TocRescanDelay() time.Duration {
	return time.Duration(c.ConfigFile.Toc.RescanDelayMs) * time.Millisecond
}
