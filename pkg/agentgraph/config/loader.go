package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type decodeFunc func([]byte, any) error

// decoders maps a lowercase file extension to its format name and decoder.
var decoders = map[string]struct {
	format string
	decode decodeFunc
}{
	".yaml": {"yaml", yaml.Unmarshal},
	".yml":  {"yaml", yaml.Unmarshal},
	".json": {"json", json.Unmarshal},
	".toml": {"toml", toml.Unmarshal},
}

// FromFile loads a Config, choosing the parser by file extension
// (.yaml, .yml, .json or .toml). ${VAR} references in the file are replaced
// from the environment before parsing, so a settings file can name a secret
// without containing it.
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	d, ok := decoders[ext]
	if !ok {
		return Config{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
	return parse(d.format, d.decode, []byte(os.ExpandEnv(string(data))))
}

// FromYAML parses a YAML mapping.
func FromYAML(data []byte) (Config, error) { return parse("yaml", yaml.Unmarshal, data) }

// FromJSON parses a JSON object.
func FromJSON(data []byte) (Config, error) { return parse("json", json.Unmarshal, data) }

// FromTOML parses a TOML document.
func FromTOML(data []byte) (Config, error) { return parse("toml", toml.Unmarshal, data) }

func parse(format string, decode decodeFunc, data []byte) (Config, error) {
	var m map[string]any
	if err := decode(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", format, err)
	}
	return New(m), nil
}
