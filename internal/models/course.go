package models

import "time"

// Course models an academic course offered in a semester at one level.
type Course struct {
	ID         string    `db:"id" json:"id"`
	Code       string    `db:"code" json:"code"`
	Name       string    `db:"name" json:"name"`
	LevelID    string    `db:"level_id" json:"level_id"`
	SemesterID string    `db:"semester_id" json:"semester_id"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// CourseDetail is the projection the authorization engine decides against:
// the course plus the directory facts its rules need.
type CourseDetail struct {
	Course
	LevelNumber       int      `db:"level_number" json:"level_number"`
	SemesterIsCurrent bool     `db:"semester_is_current" json:"semester_is_current"`
	MajorIDs          []string `json:"major_ids"`
}

// HasMajor reports whether the course is associated with the given major.
func (c *CourseDetail) HasMajor(majorID string) bool {
	for _, id := range c.MajorIDs {
		if id == majorID {
			return true
		}
	}
	return false
}

// CourseFilter captures filtering criteria for listing courses.
type CourseFilter struct {
	LevelID    string
	MajorID    string
	SemesterID string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// InstructorAssignment links an instructor principal to a course they teach.
type InstructorAssignment struct {
	ID           string    `db:"id" json:"id"`
	InstructorID string    `db:"instructor_id" json:"instructor_id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
