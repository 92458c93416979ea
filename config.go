package kindlebeam

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// SMTP defaults match the original host setup: Gmail over implicit TLS.
const (
	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = 465
)

// Config holds the delivery settings. It is stored as JSON at
// ~/.config/kindle-beam/config.json.
type Config struct {
	SMTPUser    string `json:"smtp_user"`
	SMTPPass    string `json:"smtp_pass"`
	SMTPHost    string `json:"smtp_host,omitempty"`
	SMTPPort    int    `json:"smtp_port,omitempty"`
	KindleEmail string `json:"kindle_email"`
	FromAddress string `json:"from_address,omitempty"`
}

// Validate returns an ECONFIG error naming every missing required key.
func (c *Config) Validate() error {
	var missing []string
	if c.SMTPUser == "" {
		missing = append(missing, "smtp_user")
	}
	if c.SMTPPass == "" {
		missing = append(missing, "smtp_pass")
	}
	if c.KindleEmail == "" {
		missing = append(missing, "kindle_email")
	}
	if len(missing) > 0 {
		return Errorf(ECONFIG, "missing config keys: %s", strings.Join(missing, ", "))
	}
	return nil
}

// From returns the sender address, defaulting to the SMTP user.
func (c *Config) From() string {
	if c.FromAddress != "" {
		return c.FromAddress
	}
	return c.SMTPUser
}

// Host returns the SMTP host, applying the default.
func (c *Config) Host() string {
	if c.SMTPHost != "" {
		return c.SMTPHost
	}
	return DefaultSMTPHost
}

// Port returns the SMTP port, applying the default.
func (c *Config) Port() int {
	if c.SMTPPort != 0 {
		return c.SMTPPort
	}
	return DefaultSMTPPort
}

// DefaultConfigPath returns the config file location.
func DefaultConfigPath() string {
	if path := os.Getenv("KINDLE_BEAM_CONFIG"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(home, ".config", "kindle-beam", "config.json")
}

// LoadConfig reads and validates the config file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, Errorf(ECONFIG, "config file not found: %s (create it with smtp_user, smtp_pass, kindle_email)", path)
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, Errorf(ECONFIG, "invalid config file %s: %v", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
