// Package manifest loads the YAML file that declares which assets to
// generate and which model approaches to compare.
package manifest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"spriteforge/internal/pipeline"
	"spriteforge/internal/renderapi"
)

const (
	defaultWidth    = 1024
	defaultHeight   = 1024
	defaultSteps    = 30
	defaultGuidance = 7.5
)

// Manifest is the parsed comparison manifest.
type Manifest struct {
	OutputDir  string     `yaml:"output_dir"`
	Approaches []Approach `yaml:"approaches"`
	Tasks      []Task     `yaml:"tasks"`
}

// Approach declares one model configuration to evaluate.
type Approach struct {
	Name  string `yaml:"name"`
	Model string `yaml:"model"`
}

// Task declares one asset to generate under every approach.
type Task struct {
	Name     string  `yaml:"name"`
	Prompt   string  `yaml:"prompt"`
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Steps    int     `yaml:"steps"`
	Guidance float64 `yaml:"guidance"`
	Seed     *int64  `yaml:"seed"`
	File     string  `yaml:"file"`
}

// Load reads and validates a manifest file, applying per-field defaults.
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", path, err)
	}
	m.applyDefaults()
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", path, err)
	}
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	if strings.TrimSpace(m.OutputDir) == "" {
		m.OutputDir = "./generated"
	}
	for i := range m.Tasks {
		t := &m.Tasks[i]
		if t.Width <= 0 {
			t.Width = defaultWidth
		}
		if t.Height <= 0 {
			t.Height = defaultHeight
		}
		if t.Steps <= 0 {
			t.Steps = defaultSteps
		}
		if t.Guidance <= 0 {
			t.Guidance = defaultGuidance
		}
		if strings.TrimSpace(t.File) == "" {
			t.File = strings.TrimSpace(t.Name) + ".png"
		}
	}
}

func (m *Manifest) validate() error {
	if len(m.Tasks) == 0 {
		return fmt.Errorf("at least one task is required")
	}
	taskNames := map[string]bool{}
	taskFiles := map[string]bool{}
	for i, t := range m.Tasks {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return fmt.Errorf("task %d: name is required", i)
		}
		if strings.TrimSpace(t.Prompt) == "" {
			return fmt.Errorf("task %q: prompt is required", name)
		}
		if taskNames[name] {
			return fmt.Errorf("task %q: duplicate name", name)
		}
		taskNames[name] = true
		// Destination files must be unique within one approach run.
		if taskFiles[t.File] {
			return fmt.Errorf("task %q: duplicate target file %q", name, t.File)
		}
		taskFiles[t.File] = true
	}
	approachNames := map[string]bool{}
	for i, a := range m.Approaches {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return fmt.Errorf("approach %d: name is required", i)
		}
		if strings.TrimSpace(a.Model) == "" {
			return fmt.Errorf("approach %q: model is required", name)
		}
		if approachNames[name] {
			return fmt.Errorf("approach %q: duplicate name", name)
		}
		approachNames[name] = true
	}
	return nil
}

// PipelineTasks converts manifest tasks into pipeline asset tasks. Target
// paths are relative file names; the comparison engine nests them under its
// per-approach output directories.
func (m *Manifest) PipelineTasks() []pipeline.AssetTask {
	tasks := make([]pipeline.AssetTask, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		tasks = append(tasks, pipeline.AssetTask{
			Name: t.Name,
			Request: renderapi.GenerationRequest{
				Prompt:        t.Prompt,
				Width:         t.Width,
				Height:        t.Height,
				Steps:         t.Steps,
				GuidanceScale: t.Guidance,
				Seed:          t.Seed,
				ReferenceID:   t.Name,
			},
			TargetPath: t.File,
		})
	}
	return tasks
}

// PipelineApproaches converts manifest approaches for the comparison engine.
func (m *Manifest) PipelineApproaches() []pipeline.Approach {
	approaches := make([]pipeline.Approach, 0, len(m.Approaches))
	for _, a := range m.Approaches {
		approaches = append(approaches, pipeline.Approach{Model: a.Model, Name: a.Name})
	}
	return approaches
}
