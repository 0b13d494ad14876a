// Package profile holds the static portfolio content rendered by the
// terminal: identity, about text, skills, experience, education, contact
// details and the virtual file tree behind ls and tree.
package profile

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed profile.toml
var defaultDocument []byte

// Profile is the owner's portfolio content.
type Profile struct {
	Name       string       `toml:"name"`
	Role       string       `toml:"role"`
	Location   string       `toml:"location"`
	Tagline    string       `toml:"tagline"`
	User       string       `toml:"user"`
	Host       string       `toml:"host"`
	Home       string       `toml:"home"`
	About      []string     `toml:"about"`
	Skills     []SkillGroup `toml:"skills"`
	Experience []Position   `toml:"experience"`
	Education  []Degree     `toml:"education"`
	Contact    Contact      `toml:"contact"`
	Files      []File       `toml:"files"`
}

// SkillGroup is a category of related skills.
type SkillGroup struct {
	Category string   `toml:"category"`
	Items    []string `toml:"items"`
}

// Position is one entry of work history.
type Position struct {
	Title      string   `toml:"title"`
	Company    string   `toml:"company"`
	Period     string   `toml:"period"`
	Highlights []string `toml:"highlights"`
}

// Degree is one entry of education history.
type Degree struct {
	Degree      string   `toml:"degree"`
	Institution string   `toml:"institution"`
	Period      string   `toml:"period"`
	Notes       []string `toml:"notes"`
}

// Contact lists the ways to reach the owner.
type Contact struct {
	Email    string `toml:"email"`
	GitHub   string `toml:"github"`
	LinkedIn string `toml:"linkedin"`
	Website  string `toml:"website"`
}

// File is a node of the virtual file tree. Nodes with children, or with
// Dir set, are directories.
type File struct {
	Name     string `toml:"name"`
	Dir      bool   `toml:"dir"`
	Children []File `toml:"children"`
}

// IsDir reports whether the node is a directory.
func (f File) IsDir() bool {
	return f.Dir || len(f.Children) > 0
}

// Lookup returns the top-level node named name.
func (p *Profile) Lookup(name string) (File, bool) {
	name = strings.TrimSuffix(name, "/")
	for _, f := range p.Files {
		if f.Name == name {
			return f, true
		}
	}
	return File{}, false
}

// Parse decodes a TOML profile document.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	p.fillDefaults()
	return &p, nil
}

// Load reads a profile from path, or the built-in profile when path is empty.
func Load(path string) (*Profile, error) {
	if path == "" {
		return Parse(defaultDocument)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in profile.
func Default() *Profile {
	p, err := Parse(defaultDocument)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Profile) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("parse profile: name is required")
	}
	return nil
}

func (p *Profile) fillDefaults() {
	if p.User == "" {
		p.User = "visitor"
	}
	if p.Host == "" {
		p.Host = "portfolio"
	}
	if p.Home == "" {
		p.Home = "/home/" + p.User + "/portfolio"
	}
}
