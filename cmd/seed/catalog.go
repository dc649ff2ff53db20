package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the YAML seed file. Formations point at professors by key.
type Catalog struct {
	Professors []ProfessorEntry `yaml:"professors"`
	Formations []FormationEntry `yaml:"formations"`
}

type ProfessorEntry struct {
	Key          string   `yaml:"key"`
	FirstName    string   `yaml:"firstName"`
	LastName     string   `yaml:"lastName"`
	Image        string   `yaml:"image"`
	Profile      string   `yaml:"profile"`
	Certificates []string `yaml:"certificates"`
}

type FormationEntry struct {
	Title         string   `yaml:"title"`
	StartDate     string   `yaml:"startDate"`
	EndDate       string   `yaml:"endDate"`
	Duration      *int     `yaml:"duration"`
	Location      string   `yaml:"location"`
	ClassSize     *int     `yaml:"classSize"`
	Prerequisites string   `yaml:"prerequisites"`
	Description   string   `yaml:"description"`
	Detail        string   `yaml:"detail"`
	Images        []string `yaml:"images"`
	Professors    []string `yaml:"professors"`
}

func loadCatalog(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseCatalog(b)
}

// parseCatalog decodes and checks cross references before anything is sent.
func parseCatalog(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	keys := map[string]bool{}
	for i, p := range c.Professors {
		if p.Key == "" {
			return nil, fmt.Errorf("professors[%d]: key is required", i)
		}
		if keys[p.Key] {
			return nil, fmt.Errorf("professors[%d]: duplicate key %q", i, p.Key)
		}
		keys[p.Key] = true
	}
	for i, f := range c.Formations {
		for _, k := range f.Professors {
			if !keys[k] {
				return nil, fmt.Errorf("formations[%d] (%s): unknown professor %q", i, f.Title, k)
			}
		}
	}
	return &c, nil
}
