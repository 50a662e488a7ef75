package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"redirector/internal/models"
)

// SeedFile represents the structure of a mapping seed file.
//
//	mappings:
//	  - path: /docs
//	    redirect: https://docs.example.com
//	    title: Docs
type SeedFile struct {
	Mappings []models.MappingInput `yaml:"mappings"`
}

// LoadSeedFile reads the seed file at path. An empty path yields nil without error.
func LoadSeedFile(path string) (*SeedFile, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	for i, m := range seed.Mappings {
		if m.Path == "" {
			return nil, fmt.Errorf("seed mapping %d: path is required", i)
		}
	}

	return &seed, nil
}
