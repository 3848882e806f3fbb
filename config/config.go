package config

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"

	"yasdl/common"
)

// tomlConfig represents the ~/.yasdlrc configuration file as it is encoded
// in TOML.
type tomlConfig struct {
	SearchPath []string `toml:"search-path,omitempty"`
	Driver     string   `toml:"driver,omitempty"`
	LogLevel   string   `toml:"loglevel,omitempty"`
}

// Config is the loaded tool configuration.
type Config struct {
	// SearchPath is the schema search path: the current directory followed
	// by the entries of the configuration file and the YASDL_PATH
	// environment variable.  Only existing directories are kept.
	SearchPath []string

	// Driver is the default database driver name, or "".
	Driver string

	// LogLevel is the default log level name, or "".
	LogLevel string
}

// Load reads the user configuration.  A missing ~/.yasdlrc is not an error:
// the defaults apply.
func Load() (*Config, error) {
	cfg := &Config{SearchPath: []string{"."}}

	if home, err := os.UserHomeDir(); err == nil {
		rcPath := filepath.Join(home, common.ConfigFileName)
		if _, err := os.Stat(rcPath); err == nil {
			buff, err := ioutil.ReadFile(rcPath)
			if err != nil {
				return nil, err
			}

			tc := &tomlConfig{}
			if err := toml.Unmarshal(buff, tc); err != nil {
				return nil, err
			}

			for _, dpath := range tc.SearchPath {
				if isDir(dpath) {
					cfg.SearchPath = append(cfg.SearchPath, dpath)
				}
			}
			cfg.Driver = tc.Driver
			cfg.LogLevel = tc.LogLevel
		}
	}

	if yasdlPath, ok := os.LookupEnv("YASDL_PATH"); ok {
		for _, dpath := range filepath.SplitList(yasdlPath) {
			if isDir(dpath) {
				cfg.SearchPath = append(cfg.SearchPath, dpath)
			}
		}
	}

	return cfg, nil
}

func isDir(dpath string) bool {
	info, err := os.Stat(dpath)
	return err == nil && info.IsDir()
}
