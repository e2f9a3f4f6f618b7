package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a questionnaire document: a top-level array of questions in
// JSON, or YAML when the file extension is .yaml/.yml.
func Load(path string) (*Catalog, error) {
	var qs []Question
	if err := decodeFile(path, &qs); err != nil {
		return nil, err
	}
	c := New(qs)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return c, nil
}

// LoadRules reads a scoring rules document. Keys absent from the document
// keep their default values.
func LoadRules(path string) (Rules, error) {
	r := DefaultRules()
	if err := decodeFile(path, &r); err != nil {
		return Rules{}, err
	}
	if err := r.Validate(); err != nil {
		return Rules{}, fmt.Errorf("validating %s: %w", path, err)
	}
	return r, nil
}

// LoadOrDefault loads both master data documents. A document that cannot be
// read or fails validation is replaced by its built-in default and the
// failure is logged; startup is never aborted.
func LoadOrDefault(logger *slog.Logger, catalogPath, rulesPath string) (*Catalog, Rules) {
	c, err := Load(catalogPath)
	if err != nil {
		logger.Warn("questionnaire unavailable, using built-in default",
			"path", catalogPath, "error", err)
		c = Default()
	} else {
		logger.Info("questionnaire loaded", "path", catalogPath, "questions", c.Len())
	}

	r, err := LoadRules(rulesPath)
	if err != nil {
		logger.Warn("scoring rules unavailable, using built-in default",
			"path", rulesPath, "error", err)
		r = DefaultRules()
	} else {
		logger.Info("scoring rules loaded", "path", rulesPath,
			"low", r.Thresholds.Low, "medium", r.Thresholds.Medium)
	}
	return c, r
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decoding %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decoding %s: %w", path, err)
		}
	}
	return nil
}
