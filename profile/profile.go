// Package profile holds the author introduction shown on the home page.
package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile describes the site author.
type Profile struct {
	Name           string          `yaml:"name"`
	Role           string          `yaml:"role"`
	Bio            string          `yaml:"bio"`
	Avatar         string          `yaml:"avatar"`
	GitHub         string          `yaml:"github"`
	Contacts       []Contact       `yaml:"contacts"`
	Activities     []Activity      `yaml:"activities"`
	Certifications []Certification `yaml:"certifications"`
}

// Contact is an external link such as a code host or another blog.
type Contact struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
	Link string `yaml:"link"`
}

// Activity is a community or program the author took part in.
type Activity struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

// Certification is a professional certificate.
type Certification struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

// IsZero reports whether no profile data was provided.
func (p Profile) IsZero() bool {
	return p.Name == "" && p.Role == "" && p.Bio == "" && p.Avatar == "" && p.GitHub == "" &&
		len(p.Contacts) == 0 && len(p.Activities) == 0 && len(p.Certifications) == 0
}

// Load reads a profile from a YAML file. A missing file is not an error and
// yields an empty Profile.
func Load(path string) (Profile, error) {
	var p Profile
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		return p, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return p, nil
}
