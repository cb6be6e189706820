// Package prompts holds the parameterized prompt templates for the three
// model operations: company analysis, project generation, and project
// refinement. Built-in templates can be overridden by YAML files loaded
// from a directory at startup.
package prompts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Canonical template names
const (
	CompanyAnalysis   = "company_analysis"
	ProjectGeneration = "project_generation"
	ProjectRefinement = "project_refinement"
)

// Store manages named prompt templates. It is loaded once at startup and
// safe for concurrent reads afterwards.
type Store struct {
	mu        sync.RWMutex
	templates map[string]*template.Template
}

// templateFile is the YAML structure of a prompt override file
type templateFile struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Template    string `yaml:"template"`
}

// NewStore creates a store populated with the built-in templates
func NewStore() (*Store, error) {
	s := &Store{templates: make(map[string]*template.Template)}

	for name, text := range builtinTemplates {
		if err := s.add(name, text); err != nil {
			return nil, fmt.Errorf("parse built-in template %s: %w", name, err)
		}
	}

	return s, nil
}

// LoadFromDir loads YAML prompt overrides from a directory. Files that fail
// to parse are skipped with a warning; a missing directory is not an error.
func (s *Store) LoadFromDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("prompts directory not found, using built-ins", "dir", dir)
			return nil
		}
		return fmt.Errorf("failed to read prompts directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		if err := s.LoadFromFile(filepath.Join(dir, entry.Name())); err != nil {
			slog.Warn("failed to load prompt template", "file", entry.Name(), "error", err)
			continue
		}
		loaded++
	}

	slog.Info("prompt templates loaded", "dir", dir, "overrides", loaded)
	return nil
}

// LoadFromFile loads a single prompt override from a YAML file
func (s *Store) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var tf templateFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if tf.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if tf.Template == "" {
		return fmt.Errorf("template body is required")
	}

	if err := s.add(tf.Name, tf.Template); err != nil {
		return err
	}

	slog.Info("prompt template loaded", "name", tf.Name, "file", filepath.Base(path))
	return nil
}

// Render executes the named template with data
func (s *Store) Render(name string, data any) (string, error) {
	s.mu.RLock()
	tmpl := s.templates[name]
	s.mu.RUnlock()

	if tmpl == nil {
		return "", fmt.Errorf("unknown prompt template: %s", name)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}

	return b.String(), nil
}

// List returns the names of all registered templates
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	return names
}

func (s *Store) add(name, text string) error {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}

	s.mu.Lock()
	s.templates[name] = tmpl
	s.mu.Unlock()
	return nil
}
