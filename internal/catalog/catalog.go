// Package catalog loads the list of selectable generation models.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/contractui/api/internal/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Fallback entry used when the catalog file cannot be read
const (
	FallbackModelID    = "meta-llama/llama-3.1-70b-instruct"
	FallbackModelLabel = "Llama 3.1 70B Instruct (Meta)"
)

// Catalog is the immutable set of models offered in the form
type Catalog struct {
	defaultID string
	models    []models.ModelChoice
}

type file struct {
	Default string `json:"default" yaml:"default"`
	Models  []struct {
		ID    string `json:"id" yaml:"id"`
		Label string `json:"label" yaml:"label"`
	} `json:"models" yaml:"models"`
}

// New builds a catalog from an explicit list. The default model is prepended
// when it is not part of the list; entries without an id are skipped and a
// missing label falls back to the id.
func New(defaultID string, choices []models.ModelChoice) *Catalog {
	defaultID = strings.TrimSpace(defaultID)
	if defaultID == "" {
		defaultID = FallbackModelID
	}

	list := make([]models.ModelChoice, 0, len(choices)+1)
	seen := make(map[string]bool, len(choices))
	for _, m := range choices {
		id := strings.TrimSpace(m.ID)
		if id == "" || seen[id] {
			continue
		}
		label := strings.TrimSpace(m.Label)
		if label == "" {
			label = id
		}
		seen[id] = true
		list = append(list, models.ModelChoice{ID: id, Label: label})
	}

	if !seen[defaultID] {
		label := defaultID
		if defaultID == FallbackModelID {
			label = FallbackModelLabel
		}
		list = append([]models.ModelChoice{{ID: defaultID, Label: label}}, list...)
	}

	return &Catalog{defaultID: defaultID, models: list}
}

// Fallback returns the single hard-coded entry catalog
func Fallback() *Catalog {
	return New(FallbackModelID, []models.ModelChoice{{ID: FallbackModelID, Label: FallbackModelLabel}})
}

// Load reads the catalog at path. It never fails: an unreadable or malformed
// file is logged and replaced by the fallback catalog.
func Load(path string, logger *zap.Logger) *Catalog {
	c, err := Parse(path)
	if err != nil {
		logger.Warn("model catalog not loaded, using fallback",
			zap.String("path", path),
			zap.String("fallback_model", FallbackModelID),
			zap.Error(err),
		)
		return Fallback()
	}
	return c
}

// Parse reads and decodes the catalog at path. YAML is used for .yaml and
// .yml files, JSON otherwise.
func Parse(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var f file
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", filepath.Base(path), err)
	}

	choices := make([]models.ModelChoice, 0, len(f.Models))
	for _, m := range f.Models {
		choices = append(choices, models.ModelChoice{ID: m.ID, Label: m.Label})
	}
	return New(f.Default, choices), nil
}

// Default returns the id of the default model
func (c *Catalog) Default() string {
	return c.defaultID
}

// Models returns a copy of the catalog entries in display order
func (c *Catalog) Models() []models.ModelChoice {
	out := make([]models.ModelChoice, len(c.models))
	copy(out, c.models)
	return out
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	return len(c.models)
}

// Contains reports whether id is part of the catalog
func (c *Catalog) Contains(id string) bool {
	for _, m := range c.models {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Resolve picks the model id for a form submission:
//   - choice == "__custom__": the trimmed custom id, or the default when it is blank
//   - any other non-blank choice: that id
//   - blank choice: the default
func (c *Catalog) Resolve(choice, custom string) string {
	choice = strings.TrimSpace(choice)
	if choice == models.CustomModelOption {
		if id := strings.TrimSpace(custom); id != "" {
			return id
		}
		return c.defaultID
	}
	if choice != "" {
		return choice
	}
	return c.defaultID
}
