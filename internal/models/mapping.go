package models

import "time"

// Mapping represents a path-to-URL mapping along with the metadata used to
// render a link preview card.
type Mapping struct {
	ID        int64     `json:"id"`
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Icon      string    `json:"icon"`
	Redirect  string    `json:"redirect"`
	Hits      int64     `json:"hits"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MappingInput holds the admin-editable fields of a mapping.
// Store-owned fields (id, hits, timestamps) supplied by clients are dropped
// during decoding.
type MappingInput struct {
	Path     string `json:"path" yaml:"path"`
	Title    string `json:"title" yaml:"title"`
	Body     string `json:"body" yaml:"body"`
	Icon     string `json:"icon" yaml:"icon"`
	Redirect string `json:"redirect" yaml:"redirect"`
}

// Input returns the editable fields of the mapping.
func (m *Mapping) Input() MappingInput {
	return MappingInput{
		Path:     m.Path,
		Title:    m.Title,
		Body:     m.Body,
		Icon:     m.Icon,
		Redirect: m.Redirect,
	}
}

// Apply overwrites the editable fields of the mapping with in.
func (m *Mapping) Apply(in MappingInput) {
	m.Path = in.Path
	m.Title = in.Title
	m.Body = in.Body
	m.Icon = in.Icon
	m.Redirect = in.Redirect
}
