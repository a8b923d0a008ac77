package models

import "time"

// Role is a directory entry resolving a role name to its kind.
type Role struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Kind      RoleKind  `db:"kind" json:"kind"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Major is an academic major students are classified under.
type Major struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Level is a study level. Number is the ordinal used by the archive-access
// comparison (level 1 is the first year of study).
type Level struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Number    int       `db:"level_number" json:"level_number"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Semester is an academic term. At most one semester is current system-wide.
type Semester struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	IsCurrent bool      `db:"is_current" json:"is_current"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Directory is an in-memory snapshot of the reference tables keyed by name.
// It is loaded once per bulk operation and discarded afterwards; it is not a
// long-lived cache.
type Directory struct {
	Roles  map[string]Role
	Majors map[string]Major
	Levels map[string]Level
}

// Role resolves a role name, reporting whether it exists.
func (d *Directory) Role(name string) (Role, bool) {
	r, ok := d.Roles[name]
	return r, ok
}

// Major resolves a major name, reporting whether it exists.
func (d *Directory) Major(name string) (Major, bool) {
	m, ok := d.Majors[name]
	return m, ok
}

// Level resolves a level name, reporting whether it exists.
func (d *Directory) Level(name string) (Level, bool) {
	l, ok := d.Levels[name]
	return l, ok
}
