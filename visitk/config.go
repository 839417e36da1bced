package visitk

import (
	"io/ioutil"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Config for running visits
type Config struct {
	URL        string   `toml:"url"`
	Paths      []string `toml:"paths"`
	DataPath   string   `toml:"data_path"`
	Engine     string   `toml:"engine"`
	ChromePath string   `toml:"chrome_path"`
	Headless   bool     `toml:"headless"`
	LogLevel   string   `toml:"log_level"`
	// VisitTimeout bounds how long the cli waits for each visit, in seconds
	VisitTimeout int `toml:"visit_timeout"`
}

// LoadConfig decodes a toml config file
func LoadConfig(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	cfg := &Config{}
	if err := toml.NewDecoder(strings.NewReader(string(data))).Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	return cfg, nil
}
