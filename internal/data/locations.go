package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Dataset is a run configuration found in the dataset directory.
type Dataset struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// ListDatasets returns every *.yaml / *.yml file directly under dir, sorted by
// name. The name is the file name without extension.
func ListDatasets(dir string) ([]Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset dir: %w", err)
	}
	var out []Dataset
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		out = append(out, Dataset{
			Name: strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			Path: filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// FindDataset resolves a dataset name to its config path.
func FindDataset(dir, name string) (Dataset, error) {
	list, err := ListDatasets(dir)
	if err != nil {
		return Dataset{}, err
	}
	for _, d := range list {
		if d.Name == name {
			return d, nil
		}
	}
	return Dataset{}, fmt.Errorf("dataset %q not found", name)
}

// GetDefaultDatasetDir returns the dataset directory.
func GetDefaultDatasetDir() string {
	if dir := os.Getenv("DATASET_DIR"); dir != "" {
		return dir
	}
	return "./examples"
}
