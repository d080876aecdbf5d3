// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package casegen

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// SeedFile is the on-disk representation of a seed batch. An operator can
// keep seed lists per campaign in version control and point one cron entry
// at each file instead of editing the global config.
type SeedFile struct {
	Seeds []string `yaml:"seeds"`

	// KeywordsPerSeed and CasesPerKeyword override the configured sizing
	// for this batch when positive.
	KeywordsPerSeed int `yaml:"keywords_per_seed,omitempty"`
	CasesPerKeyword int `yaml:"cases_per_keyword,omitempty"`
}

// ReadSeedFile loads a seed batch from a YAML file.
func ReadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var sf SeedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	if len(sf.Seeds) == 0 {
		return nil, fmt.Errorf("seed file %s lists no seeds", path)
	}
	return &sf, nil
}

// WriteSeedFile saves a seed batch to a YAML file.
func WriteSeedFile(path string, sf SeedFile) error {
	data, err := yaml.Marshal(&sf)
	if err != nil {
		return fmt.Errorf("marshaling seed file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing seed file: %w", err)
	}
	return nil
}
