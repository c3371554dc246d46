package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// File names searched for, in order. The first one found wins.
var FileNames = []string{".transkit.yaml", ".transkit.yml", ".transkit.toml"}

// readFile overlays the first config file found in dir onto c. A missing
// file is not an error.
func (c *Config) readFile(dir string) error {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("reading %s: %w", path, err)
		}

		if filepath.Ext(name) == ".toml" {
			err = toml.Unmarshal(data, c)
		} else {
			err = yaml.Unmarshal(data, c)
		}
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		c.Path = path
		return nil
	}
	return nil
}
