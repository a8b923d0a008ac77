package access

// Reason is a stable, user-displayable denial reason code.
type Reason string

const (
	ReasonResourceUnavailable    Reason = "RESOURCE_UNAVAILABLE"
	ReasonNotAssigned            Reason = "NOT_ASSIGNED"
	ReasonClassificationRequired Reason = "CLASSIFICATION_REQUIRED"
	ReasonNotInMajor             Reason = "NOT_IN_MAJOR"
	ReasonNotCurrentLevel        Reason = "NOT_CURRENT_LEVEL"
	ReasonLevelNotReached        Reason = "LEVEL_NOT_REACHED"
	ReasonNotVisible             Reason = "NOT_VISIBLE"
	ReasonNoRole                 Reason = "NO_ROLE"
)

var reasonMessages = map[Reason]string{
	ReasonResourceUnavailable:    "resource unavailable",
	ReasonNotAssigned:            "you are not assigned to this course",
	ReasonClassificationRequired: "classification required",
	ReasonNotInMajor:             "not in your major",
	ReasonNotCurrentLevel:        "not your current level",
	ReasonLevelNotReached:        "future level not yet reached",
	ReasonNotVisible:             "not currently visible",
	ReasonNoRole:                 "no role assigned",
}

// Message returns the terse, role-appropriate text shown to the caller. It
// never leaks the existence of other principals or resources.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return "access denied"
}

// Decision is the outcome of one authorization check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason,omitempty"`
}

// Allow returns an allowing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denying decision carrying the given reason code.
func Deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}
