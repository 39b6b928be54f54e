package configs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	kerrors "github.com/PolarWolf314/envstore/internal/errors"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a config file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Formats returns the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatTOML, FormatYAML}
}

// FormatNames returns the supported formats as strings.
func FormatNames() []string {
	formats := Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return names
}

// extensions lists config file extensions in discovery order.
var extensions = []string{"json", "toml", "yaml", "yml"}

// ParseFormat accepts json, toml, yaml or yml.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", kerrors.ErrUnsupportedFormat, name)
}

// FormatFromPath detects the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", kerrors.ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// FileName returns the config file name for format.
func FileName(format Format) string {
	return fileName(string(format))
}

func fileName(ext string) string {
	return ConfigBaseName + "." + ext
}

func decode(format Format, data []byte, v any) error {
	switch format {
	case FormatJSON:
		return json.Unmarshal(data, v)
	case FormatTOML:
		_, err := toml.Decode(string(data), v)
		return err
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	}
	return fmt.Errorf("%w: %q", kerrors.ErrUnsupportedFormat, format)
}

func encode(format Format, v any) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatYAML:
		return yaml.Marshal(v)
	}
	return nil, fmt.Errorf("%w: %q", kerrors.ErrUnsupportedFormat, format)
}
