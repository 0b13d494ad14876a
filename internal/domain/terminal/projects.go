package terminal

import (
	"context"

	"github.com/GriffinCanCode/portfolio/internal/domain/project"
)

// ProjectSource loads the projects shown by the projects command. It is
// called once per mounted session.
type ProjectSource interface {
	ListProjects(ctx context.Context) ([]project.Project, error)
}

// ProjectSourceFunc adapts a function to ProjectSource.
type ProjectSourceFunc func(ctx context.Context) ([]project.Project, error)

// ListProjects calls f.
func (f ProjectSourceFunc) ListProjects(ctx context.Context) ([]project.Project, error) {
	return f(ctx)
}
