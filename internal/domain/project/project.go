package project

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("project not found")
	ErrInvalidInput = errors.New("invalid project input")
)

// Status controls whether a project is visible on the public API.
type Status string

const (
	StatusPublished Status = "published"
	StatusDraft     Status = "draft"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPublished, StatusDraft, StatusArchived:
		return true
	}
	return false
}

// Links are optional external references for a project.
type Links struct {
	GitHub string `json:"github,omitempty" yaml:"github"`
	Live   string `json:"live,omitempty" yaml:"live"`
	Demo   string `json:"demo,omitempty" yaml:"demo"`
}

// Empty reports whether no link is set.
func (l Links) Empty() bool {
	return l.GitHub == "" && l.Live == "" && l.Demo == ""
}

// Project is one showcased work item.
type Project struct {
	ID               string            `json:"id"`
	Slug             string            `json:"slug"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	ShortDescription string            `json:"short_description,omitempty"`
	Technologies     []string          `json:"technologies"`
	Images           []string          `json:"images"`
	Thumbnail        string            `json:"thumbnail,omitempty"`
	Links            *Links            `json:"links,omitempty"`
	Category         string            `json:"category"`
	Featured         bool              `json:"featured"`
	Status           Status            `json:"status"`
	Order            int               `json:"order"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	DateCreated      time.Time         `json:"date_created"`
	DateUpdated      time.Time         `json:"date_updated"`
}

// MainImage returns the thumbnail or the first image.
func (p Project) MainImage() string {
	if p.Thumbnail != "" {
		return p.Thumbnail
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// Summary returns the short description, falling back to the full one.
func (p Project) Summary() string {
	if p.ShortDescription != "" {
		return p.ShortDescription
	}
	return p.Description
}

// CategoryCount is one entry of the category listing.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats summarises the collection for the admin dashboard.
type Stats struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Drafts    int `json:"drafts"`
	Archived  int `json:"archived"`
	Featured  int `json:"featured"`
}
