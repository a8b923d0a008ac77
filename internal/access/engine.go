// Package access implements the portal's authorization engine: a single pure
// decision function shared by every handler that touches an academic resource.
// Keeping the policy in one place keeps it centrally testable and prevents
// per-handler copies drifting apart.
package access

import "github.com/sacm-project/sacm-api/internal/models"

// Subject is the view of a principal the engine decides on. LevelNumber is
// resolved from the directory by the caller; it is meaningful only when
// LevelID is set.
type Subject struct {
	ID          string
	Role        models.RoleKind
	MajorID     *string
	LevelID     *string
	LevelNumber int
}

// Resource is the projection an authorization check runs against: the owning
// course with its directory facts, an optional file, and whether the subject
// is on the course's instructor assignment set.
type Resource struct {
	Course             models.CourseDetail
	File               *models.LectureFile
	AssignedInstructor bool
}

// Options tunes a single check. Mutation requests write access instead of
// read. RequireVisible enforces the file visibility flag; staff-initiated
// access paths leave it off.
type Options struct {
	Mutation       bool
	RequireVisible bool
}

// Decide evaluates the access rules in order, first match wins. It performs
// no I/O, never panics on absent fields, and is safe for unrestricted
// concurrent use.
//
// Level rules for students are deliberately asymmetric: current-semester
// courses require an exact level match (no reading ahead of schedule), while
// archived-semester courses require the student's level number to be at or
// above the course's (material a student has progressed past stays readable).
func Decide(subject Subject, resource Resource, opts Options) Decision {
	if resource.File != nil && resource.File.IsDeleted {
		return Deny(ReasonResourceUnavailable)
	}

	switch subject.Role {
	case models.RoleAdmin:
		return Allow()

	case models.RoleInstructor:
		if opts.Mutation && !resource.AssignedInstructor {
			return Deny(ReasonNotAssigned)
		}
		// Unassigned instructors may browse any course read-only.
		return Allow()

	case models.RoleStudent:
		return decideStudent(subject, resource, opts)

	default:
		return Deny(ReasonNoRole)
	}
}

func decideStudent(subject Subject, resource Resource, opts Options) Decision {
	if subject.MajorID == nil || subject.LevelID == nil {
		return Deny(ReasonClassificationRequired)
	}

	course := resource.Course
	if !course.HasMajor(*subject.MajorID) {
		return Deny(ReasonNotInMajor)
	}

	if course.SemesterIsCurrent {
		if *subject.LevelID != course.LevelID {
			return Deny(ReasonNotCurrentLevel)
		}
	} else if subject.LevelNumber < course.LevelNumber {
		return Deny(ReasonLevelNotReached)
	}

	if opts.RequireVisible && resource.File != nil && !resource.File.IsVisible {
		return Deny(ReasonNotVisible)
	}

	return Allow()
}
