// engine/internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SalaryBand is the plausible [min,max] range for a job-level band.
type SalaryBand struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// RuleTables holds the static lookup data the detection rules run
// against. Loaded once at startup and treated as read-only afterwards.
type RuleTables struct {
	FreeEmailDomains []string              `yaml:"free_email_domains" json:"free_email_domains"`
	Keywords         map[string][]string   `yaml:"keywords" json:"keywords"`
	SalaryBands      map[string]SalaryBand `yaml:"salary_bands" json:"salary_bands"`
	Misspellings     []string              `yaml:"misspellings" json:"misspellings"`
	LegitimacyWords  []string              `yaml:"legitimacy_words" json:"legitimacy_words"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	Intake struct {
		Enabled     bool   `yaml:"enabled" json:"enabled"`
		IMAPHost    string `yaml:"imap_host" json:"imap_host"`
		IMAPPort    int    `yaml:"imap_port" json:"imap_port"`
		Username    string `yaml:"username" json:"username"`
		Mailbox     string `yaml:"mailbox" json:"mailbox"`
		PollSeconds int    `yaml:"poll_seconds" json:"poll_seconds"`
		MaxMessages int    `yaml:"max_messages" json:"max_messages"`
	} `yaml:"intake" json:"intake"`

	Rules RuleTables `yaml:"rules" json:"rules"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	// A config that fails validation must never reach the engine: a bad
	// salary band, for example, would make contradictory salary rules
	// fire together.
	cfg, vr := NormalizeAndValidate(cfg)
	if err := vr.Err(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
