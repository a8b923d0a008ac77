package access

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sacm-project/sacm-api/internal/models"
)

func strPtr(s string) *string { return &s }

func student(majorID, levelID string, levelNumber int) Subject {
	subj := Subject{ID: "student-1", Role: models.RoleStudent, LevelNumber: levelNumber}
	if majorID != "" {
		subj.MajorID = strPtr(majorID)
	}
	if levelID != "" {
		subj.LevelID = strPtr(levelID)
	}
	return subj
}

func courseResource(levelID string, levelNumber int, current bool, majorIDs ...string) Resource {
	return Resource{
		Course: models.CourseDetail{
			Course:            models.Course{ID: "course-1", LevelID: levelID},
			LevelNumber:       levelNumber,
			SemesterIsCurrent: current,
			MajorIDs:          majorIDs,
		},
	}
}

func TestDecideDeletedFileDominatesEveryRole(t *testing.T) {
	resource := courseResource("L3", 3, true, "M1")
	resource.File = &models.LectureFile{ID: "f1", CourseID: "course-1", IsDeleted: true, IsVisible: true}

	for _, role := range []models.RoleKind{models.RoleAdmin, models.RoleInstructor, models.RoleStudent} {
		subj := Subject{ID: "p", Role: role, MajorID: strPtr("M1"), LevelID: strPtr("L3"), LevelNumber: 3}
		decision := Decide(subj, resource, Options{})
		assert.False(t, decision.Allowed, "role %s must not reach a deleted file", role)
		assert.Equal(t, ReasonResourceUnavailable, decision.Reason)
	}
}

func TestDecideAdminBypass(t *testing.T) {
	subj := Subject{ID: "admin-1", Role: models.RoleAdmin}
	decision := Decide(subj, courseResource("L1", 1, true, "M1"), Options{Mutation: true})
	assert.True(t, decision.Allowed)
}

func TestDecideInstructorReadAlwaysAllowed(t *testing.T) {
	subj := Subject{ID: "instr-1", Role: models.RoleInstructor}
	decision := Decide(subj, courseResource("L1", 1, true, "M1"), Options{})
	assert.True(t, decision.Allowed, "unassigned instructors may browse read-only")
}

func TestDecideInstructorMutationRequiresAssignment(t *testing.T) {
	subj := Subject{ID: "instr-1", Role: models.RoleInstructor}
	resource := courseResource("L1", 1, true, "M1")

	decision := Decide(subj, resource, Options{Mutation: true})
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonNotAssigned, decision.Reason)

	resource.AssignedInstructor = true
	decision = Decide(subj, resource, Options{Mutation: true})
	assert.True(t, decision.Allowed)
}

func TestDecideStudentMissingClassification(t *testing.T) {
	resource := courseResource("L1", 1, true, "M1")

	for name, subj := range map[string]Subject{
		"no major": student("", "L1", 1),
		"no level": student("M1", "", 0),
		"neither":  student("", "", 0),
	} {
		decision := Decide(subj, resource, Options{})
		assert.False(t, decision.Allowed, name)
		assert.Equal(t, ReasonClassificationRequired, decision.Reason, name)
	}
}

func TestDecideStudentMajorMismatch(t *testing.T) {
	decision := Decide(student("M2", "L1", 1), courseResource("L1", 1, true, "M1", "M3"), Options{})
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonNotInMajor, decision.Reason)
}

func TestDecideCurrentSemesterRequiresExactLevel(t *testing.T) {
	// Every level pair, including adjacent levels: only an exact match allows.
	for studentLevel := 1; studentLevel <= 8; studentLevel++ {
		for courseLevel := 1; courseLevel <= 8; courseLevel++ {
			subj := student("M1", fmt.Sprintf("L%d", studentLevel), studentLevel)
			resource := courseResource(fmt.Sprintf("L%d", courseLevel), courseLevel, true, "M1")
			decision := Decide(subj, resource, Options{})
			if studentLevel == courseLevel {
				assert.True(t, decision.Allowed, "student L%d course L%d", studentLevel, courseLevel)
			} else {
				assert.False(t, decision.Allowed, "student L%d course L%d", studentLevel, courseLevel)
				assert.Equal(t, ReasonNotCurrentLevel, decision.Reason)
			}
		}
	}
}

func TestDecideArchivedSemesterAllowsAtOrAboveLevel(t *testing.T) {
	for studentLevel := 1; studentLevel <= 8; studentLevel++ {
		for courseLevel := 1; courseLevel <= 8; courseLevel++ {
			subj := student("M1", fmt.Sprintf("L%d", studentLevel), studentLevel)
			resource := courseResource(fmt.Sprintf("L%d", courseLevel), courseLevel, false, "M1")
			decision := Decide(subj, resource, Options{})
			if studentLevel >= courseLevel {
				assert.True(t, decision.Allowed, "student L%d archived course L%d", studentLevel, courseLevel)
			} else {
				assert.False(t, decision.Allowed, "student L%d archived course L%d", studentLevel, courseLevel)
				assert.Equal(t, ReasonLevelNotReached, decision.Reason)
			}
		}
	}
}

func TestDecideArchivedEqualLevelBoundaryAllows(t *testing.T) {
	decision := Decide(student("M1", "L4", 4), courseResource("L4", 4, false, "M1"), Options{})
	assert.True(t, decision.Allowed)
}

func TestDecideHiddenFileVisibility(t *testing.T) {
	resource := courseResource("L2", 2, true, "M1")
	resource.File = &models.LectureFile{ID: "f1", CourseID: "course-1", IsVisible: false}
	subj := student("M1", "L2", 2)

	decision := Decide(subj, resource, Options{RequireVisible: true})
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonNotVisible, decision.Reason)

	// Staff-initiated paths skip the visibility requirement.
	decision = Decide(subj, resource, Options{})
	assert.True(t, decision.Allowed)

	instr := Subject{ID: "instr-1", Role: models.RoleInstructor}
	decision = Decide(instr, resource, Options{RequireVisible: true})
	assert.True(t, decision.Allowed, "visibility never blocks staff")
}

func TestDecideUnknownRoleDenied(t *testing.T) {
	decision := Decide(Subject{ID: "x", Role: models.RoleKind("Auditor")}, courseResource("L1", 1, true, "M1"), Options{})
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonNoRole, decision.Reason)

	decision = Decide(Subject{ID: "y"}, courseResource("L1", 1, true, "M1"), Options{})
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonNoRole, decision.Reason)
}

func TestReasonMessagesAreStable(t *testing.T) {
	assert.Equal(t, "resource unavailable", ReasonResourceUnavailable.Message())
	assert.Equal(t, "not your current level", ReasonNotCurrentLevel.Message())
	assert.Equal(t, "future level not yet reached", ReasonLevelNotReached.Message())
	assert.Equal(t, "access denied", Reason("BOGUS").Message())
}
