package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/portfolio/internal/domain/project"
)

//go:embed projects.yaml
var embedded []byte

// Document is the seed file layout.
type Document struct {
	Projects []Entry `yaml:"projects"`
}

// Entry is one seeded project.
type Entry struct {
	Title            string            `yaml:"title"`
	Slug             string            `yaml:"slug"`
	ShortDescription string            `yaml:"short_description"`
	Description      string            `yaml:"description"`
	Technologies     []string          `yaml:"technologies"`
	Images           []string          `yaml:"images"`
	Thumbnail        string            `yaml:"thumbnail"`
	Links            *project.Links    `yaml:"links"`
	Category         string            `yaml:"category"`
	Featured         bool              `yaml:"featured"`
	Status           string            `yaml:"status"`
	Order            int               `yaml:"order"`
	Metadata         map[string]string `yaml:"metadata"`
}

func (e Entry) input() project.Input {
	return project.Input{
		Title:            e.Title,
		Slug:             e.Slug,
		ShortDescription: e.ShortDescription,
		Description:      e.Description,
		Technologies:     e.Technologies,
		Images:           e.Images,
		Thumbnail:        e.Thumbnail,
		Links:            e.Links,
		Category:         e.Category,
		Featured:         e.Featured,
		Status:           project.Status(e.Status),
		Order:            e.Order,
		Metadata:         e.Metadata,
	}
}

// Parse decodes a seed document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &doc, nil
}

// Load reads the seed document at path, or the built-in one when path is empty.
func Load(path string) (*Document, error) {
	if path == "" {
		return Parse(embedded)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Seeder loads sample projects into an empty store.
type Seeder struct {
	projects *project.Service
	logger   *zap.Logger
}

// NewSeeder creates a seeder.
func NewSeeder(projects *project.Service, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{projects: projects, logger: logger}
}

// Seed creates every project of doc when the store holds none. It returns
// the number of projects created.
func (s *Seeder) Seed(ctx context.Context, doc *Document) (int, error) {
	stats, err := s.projects.Stats(ctx)
	if err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	if stats.Total > 0 {
		s.logger.Debug("project store already populated, skipping seed", zap.Int("projects", stats.Total))
		return 0, nil
	}

	var loaded, failed int
	for _, e := range doc.Projects {
		if _, err := s.projects.Create(ctx, e.input()); err != nil {
			s.logger.Warn("failed to seed project", zap.String("title", e.Title), zap.Error(err))
			failed++
			continue
		}
		loaded++
	}
	s.logger.Info("seeding complete", zap.Int("loaded", loaded), zap.Int("failed", failed))
	return loaded, nil
}
