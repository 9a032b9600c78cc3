package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a manifest from the given file path.
//
// The file format is determined by extension: .yaml/.yml for YAML, .json for JSON.
// If the extension is unrecognized, YAML is attempted first, then JSON.
//
// After loading, the manifest is validated and defaults are applied to
// optional fields.
//
// Returns an error if:
//   - The file cannot be read (not found, permission denied, etc.)
//   - The file content is not valid YAML or JSON
//   - The manifest fails validation
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest file not found: %s", path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied reading manifest: %s", path)
		}
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	return LoadFromBytes(data, path)
}

// LoadFromBytes parses and validates a manifest from raw bytes.
//
// The path parameter is used for error messages and format detection.
// If path is empty, format detection falls back to trying YAML first.
func LoadFromBytes(data []byte, path string) (*Manifest, error) {
	if len(data) == 0 {
		return nil, errors.New("manifest file is empty")
	}

	manifest, err := parseManifest(data, path)
	if err != nil {
		return nil, err
	}

	if err := manifest.Validate(); err != nil {
		return nil, err
	}

	manifest.ApplyDefaults()

	return manifest, nil
}

// LoadFromReader reads and validates a manifest from an io.Reader.
//
// The path parameter is used for error messages and format detection.
// If path is empty, format detection falls back to trying YAML first.
func LoadFromReader(r io.Reader, path string) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return LoadFromBytes(data, path)
}

// parseManifest parses the manifest data based on file extension.
func parseManifest(data []byte, path string) (*Manifest, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".json":
		return parseJSON(data)
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		// Unknown extension: try YAML first (more permissive), then JSON
		manifest, yamlErr := parseYAML(data)
		if yamlErr == nil {
			return manifest, nil
		}
		manifest, jsonErr := parseJSON(data)
		if jsonErr == nil {
			return manifest, nil
		}
		// Both failed - return YAML error as it's the preferred format
		return nil, fmt.Errorf("failed to parse manifest (tried YAML and JSON): %w", yamlErr)
	}
}

// parseJSON parses manifest data as JSON.
func parseJSON(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("invalid JSON in manifest: %w", err)
	}
	return &manifest, nil
}

// parseYAML parses manifest data as YAML.
func parseYAML(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("invalid YAML in manifest: %w", err)
	}
	return &manifest, nil
}
