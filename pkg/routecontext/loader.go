package routecontext

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"onboarding-assistant-be/internal/pkg/logger"

	"gopkg.in/yaml.v3"
)

const moduleName = "routecontext"

// LoadDirectory reads one context per file from dir (*.json, *.yaml, *.yml) and
// returns them keyed by normalized route. Unreadable or malformed files are skipped
// with a warning; a missing directory yields an empty table.
func LoadDirectory(dir string, log logger.ILogger) map[string]RouteContext {
	contexts := make(map[string]RouteContext)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn(moduleName, "Data directory not found", map[string]interface{}{"directory": dir})
		} else {
			log.Warn(moduleName, "Failed to read data directory", map[string]interface{}{"directory": dir, "error": err.Error()})
		}
		return contexts
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		rc, err := loadFile(path, ext)
		if err != nil {
			log.Warn(moduleName, "Skipping context file", map[string]interface{}{"file": path, "error": err.Error()})
			continue
		}

		key := NormalizeRoute(rc.Route)
		if _, exists := contexts[key]; exists {
			log.Warn(moduleName, "Duplicate route context, later file wins", map[string]interface{}{"file": path, "route": key})
		}
		contexts[key] = withDefaults(rc)
	}

	log.Info(moduleName, "Loaded route contexts", map[string]interface{}{"directory": dir, "count": len(contexts)})
	return contexts
}

func loadFile(path, ext string) (RouteContext, error) {
	var rc RouteContext

	data, err := os.ReadFile(path)
	if err != nil {
		return rc, fmt.Errorf("read file: %w", err)
	}

	if ext == ".json" {
		err = json.Unmarshal(data, &rc)
	} else {
		err = yaml.Unmarshal(data, &rc)
	}
	if err != nil {
		return rc, fmt.Errorf("decode: %w", err)
	}

	if strings.TrimSpace(rc.Route) == "" {
		return rc, fmt.Errorf("context has no route")
	}
	return rc, nil
}
