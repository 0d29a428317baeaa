package models

import (
	"time"

	"github.com/google/uuid"
)

// Condition sources, in lookup order.
const (
	ConditionSourceStore  = "store"
	ConditionSourceStatic = "static"
	ConditionSourceRemote = "remote"
)

// ConditionInfo is read-only reference content about a skin condition.
type ConditionInfo struct {
	ID          uuid.UUID `db:"id"          json:"-"                 yaml:"-"`
	Slug        string    `db:"slug"        json:"name"              yaml:"name"`
	Title       string    `db:"title"       json:"title"             yaml:"title"`
	Summary     string    `db:"summary"     json:"summary,omitempty" yaml:"summary"`
	Description string    `db:"description" json:"description"       yaml:"description"`
	Causes      []string  `db:"causes"      json:"causes"            yaml:"causes"`
	Symptoms    []string  `db:"symptoms"    json:"symptoms"          yaml:"symptoms"`
	Treatment   []string  `db:"treatment"   json:"treatment"         yaml:"treatment"`
	Prevention  []string  `db:"prevention"  json:"prevention"        yaml:"prevention"`
	Image       string    `db:"image"       json:"image"             yaml:"image"`
	Source      string    `db:"-"           json:"source,omitempty"  yaml:"-"`
	CreatedAt   time.Time `db:"created_at"  json:"-"                 yaml:"-"`
	UpdatedAt   time.Time `db:"updated_at"  json:"-"                 yaml:"-"`
}
