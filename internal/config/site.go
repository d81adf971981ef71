package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults for site configuration.
const (
	DefaultContentDir  = "content"
	DefaultOutputDir   = "public"
	DefaultUIOutputDir = "_"
	DefaultWorkers     = 4
)

// Site is the host build configuration, read from YAML.
type Site struct {
	// Title is the site title shown in page heads.
	Title string `yaml:"title"`

	// ContentDir holds the Markdown sources.
	ContentDir string `yaml:"content_dir"`

	// OutputDir receives the generated site.
	OutputDir string `yaml:"output_dir"`

	// UIDir optionally holds user UI files (assets and partials/*.tmpl).
	UIDir string `yaml:"ui_dir,omitempty"`

	// UIOutputDir is the folder, relative to OutputDir, for UI assets.
	UIOutputDir string `yaml:"ui_output_dir"`

	// Workers bounds concurrent document conversion.
	Workers int `yaml:"workers"`

	// Env seeds the build-wide environment visible to page layouts.
	Env map[string]string `yaml:"env,omitempty"`

	// Extensions maps extension names to their setup options.
	Extensions map[string]map[string]any `yaml:"extensions,omitempty"`
}

// LoadSite reads a site configuration file. Relative directories resolve
// against the file's directory. Unknown fields are rejected.
func LoadSite(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site config: %w", err)
	}
	site, err := ParseSite(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	site.resolve(filepath.Dir(path))
	return site, nil
}

// ParseSite decodes a site configuration and applies defaults. Directories
// are left as written.
func ParseSite(data []byte) (*Site, error) {
	site := &Site{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(site); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse site config: %w", err)
	}
	site.applyDefaults()
	if site.Workers < 1 {
		return nil, fmt.Errorf("parse site config: workers must be positive, got %d", site.Workers)
	}
	if filepath.IsAbs(site.UIOutputDir) {
		return nil, fmt.Errorf("parse site config: ui_output_dir must be relative, got %q", site.UIOutputDir)
	}
	return site, nil
}

func (s *Site) applyDefaults() {
	if s.ContentDir == "" {
		s.ContentDir = DefaultContentDir
	}
	if s.OutputDir == "" {
		s.OutputDir = DefaultOutputDir
	}
	if s.UIOutputDir == "" {
		s.UIOutputDir = DefaultUIOutputDir
	}
	if s.Workers == 0 {
		s.Workers = DefaultWorkers
	}
	if s.Env == nil {
		s.Env = map[string]string{}
	}
}

func (s *Site) resolve(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	s.ContentDir = abs(s.ContentDir)
	s.OutputDir = abs(s.OutputDir)
	s.UIDir = abs(s.UIDir)
}
