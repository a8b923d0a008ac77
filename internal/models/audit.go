package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin      = "LOGIN"
	AuditActionActivate   = "ACCOUNT_ACTIVATE"
	AuditActionImport     = "BULK_IMPORT"
	AuditActionPromote    = "STUDENT_PROMOTE"
	AuditActionGraduate   = "STUDENT_GRADUATE"
	AuditActionFileUpload = "FILE_UPLOAD"
	AuditActionFileDelete = "FILE_DELETE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID          string    `db:"id" json:"id"`
	PrincipalID *string   `db:"principal_id" json:"principal_id,omitempty"`
	Action      string    `db:"action" json:"action"`
	Resource    string    `db:"resource" json:"resource"`
	ResourceID  *string   `db:"resource_id" json:"resource_id,omitempty"`
	Details     []byte    `db:"details" json:"details,omitempty"`
	IPAddress   string    `db:"ip_address" json:"ip_address"`
	UserAgent   string    `db:"user_agent" json:"user_agent"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
