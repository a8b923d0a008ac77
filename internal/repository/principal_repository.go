package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sacm-project/sacm-api/internal/models"
)

const principalColumns = `id, academic_id, id_card_number, full_name, email, password_hash, role, major_id, level_id, account_status, created_at, updated_at`

// PrincipalRepository provides database access for principal management.
type PrincipalRepository struct {
	db *sqlx.DB
}

// NewPrincipalRepository creates a new instance of PrincipalRepository.
func NewPrincipalRepository(db *sqlx.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

// FindByID returns a principal by identifier.
func (r *PrincipalRepository) FindByID(ctx context.Context, id string) (*models.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE id = $1 LIMIT 1`
	var principal models.Principal
	if err := r.db.GetContext(ctx, &principal, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find principal by id: %w", err)
	}
	return &principal, nil
}

// FindByAcademicID returns a principal by its external academic identity.
func (r *PrincipalRepository) FindByAcademicID(ctx context.Context, academicID string) (*models.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE academic_id = $1 LIMIT 1`
	var principal models.Principal
	if err := r.db.GetContext(ctx, &principal, query, academicID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find principal by academic id: %w", err)
	}
	return &principal, nil
}

// FindDetailByID returns a principal with its classification resolved, which
// the authorization checks need for the level-number comparison.
func (r *PrincipalRepository) FindDetailByID(ctx context.Context, id string) (*models.PrincipalDetail, error) {
	query := `SELECT p.id, p.academic_id, p.id_card_number, p.full_name, p.email, p.password_hash, p.role, p.major_id, p.level_id, p.account_status, p.created_at, p.updated_at,
m.name AS major_name, l.name AS level_name, l.level_number
FROM principals p
LEFT JOIN majors m ON m.id = p.major_id
LEFT JOIN levels l ON l.id = p.level_id
WHERE p.id = $1 LIMIT 1`
	var detail models.PrincipalDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find principal detail: %w", err)
	}
	return &detail, nil
}

// List returns principals based on filters with total count.
func (r *PrincipalRepository) List(ctx context.Context, filter models.PrincipalFilter) ([]models.Principal, int, error) {
	baseQuery := `FROM principals WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, filter.Role)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("account_status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.MajorID != "" {
		conditions = append(conditions, fmt.Sprintf("major_id = $%d", len(args)+1))
		args = append(args, filter.MajorID)
	}
	if filter.LevelID != "" {
		conditions = append(conditions, fmt.Sprintf("level_id = $%d", len(args)+1))
		args = append(args, filter.LevelID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(academic_id) LIKE $%d OR LOWER(full_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"academic_id": true,
		"full_name":   true,
		"created_at":  true,
		"updated_at":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", principalColumns, baseQuery, sortBy, sortOrder, pageSize, offset)
	var principals []models.Principal
	if err := r.db.SelectContext(ctx, &principals, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list principals: %w", err)
	}

	countQuery := "SELECT COUNT(*) " + baseQuery
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count principals: %w", err)
	}

	return principals, total, nil
}

// ListAcademicIDs returns the set of every known external academic identity.
func (r *PrincipalRepository) ListAcademicIDs(ctx context.Context) (map[string]struct{}, error) {
	return r.listIdentitySet(ctx, `SELECT academic_id FROM principals`)
}

// ListIDCardNumbers returns the set of every known national id-card number.
func (r *PrincipalRepository) ListIDCardNumbers(ctx context.Context) (map[string]struct{}, error) {
	return r.listIdentitySet(ctx, `SELECT id_card_number FROM principals`)
}

func (r *PrincipalRepository) listIdentitySet(ctx context.Context, query string) (map[string]struct{}, error) {
	var values []string
	if err := r.db.SelectContext(ctx, &values, query); err != nil {
		return nil, fmt.Errorf("list identity set: %w", err)
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set, nil
}

// BulkCreate inserts the accepted principals of one import as a single
// transaction, flushing in batchSize chunks to bound statement size.
// Duplicate-key conflicts (a race with a concurrent import) are ignored by
// the store; the returned count is the number of rows actually created.
func (r *PrincipalRepository) BulkCreate(ctx context.Context, principals []models.Principal, batchSize int) (int, error) {
	if len(principals) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bulk create: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	created := 0
	for start := 0; start < len(principals); start += batchSize {
		end := start + batchSize
		if end > len(principals) {
			end = len(principals)
		}
		n, err := insertPrincipalBatch(ctx, tx, principals[start:end])
		if err != nil {
			return 0, err
		}
		created += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk create: %w", err)
	}
	return created, nil
}

func insertPrincipalBatch(ctx context.Context, tx *sqlx.Tx, batch []models.Principal) (int, error) {
	values := make([]string, 0, len(batch))
	args := make([]interface{}, 0, len(batch)*11)
	for i, p := range batch {
		base := i * 11
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10, base+11))
		// PasswordHash is empty until activation; bind it anyway so scans
		// of imported rows never see a NULL in a string column.
		args = append(args, p.ID, p.AcademicID, p.IDCardNumber, p.FullName, p.Email, p.PasswordHash, p.Role, p.MajorID, p.LevelID, p.Status, p.CreatedAt)
	}

	query := `INSERT INTO principals (id, academic_id, id_card_number, full_name, email, password_hash, role, major_id, level_id, account_status, created_at)
VALUES ` + strings.Join(values, ", ") + ` ON CONFLICT DO NOTHING`

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert principal batch: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert principal batch affected: %w", err)
	}
	return int(affected), nil
}

// Activate switches an inactive account to active, attaching the chosen
// credentials.
func (r *PrincipalRepository) Activate(ctx context.Context, id, email, passwordHash string, ts time.Time) error {
	const query = `UPDATE principals SET email = $2, password_hash = $3, account_status = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, email, passwordHash, models.StatusActive, ts); err != nil {
		return fmt.Errorf("activate principal: %w", err)
	}
	return nil
}

// PromoteLevel moves active students from one level to another, optionally
// restricted to a major. Returns the number of students promoted.
func (r *PrincipalRepository) PromoteLevel(ctx context.Context, fromLevelID, toLevelID string, majorID *string, ts time.Time) (int64, error) {
	query := `UPDATE principals SET level_id = $2, updated_at = $3 WHERE role = $4 AND account_status = $5 AND level_id = $1`
	args := []interface{}{fromLevelID, toLevelID, ts, models.RoleStudent, models.StatusActive}
	if majorID != nil {
		query += ` AND major_id = $6`
		args = append(args, *majorID)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("promote level: %w", err)
	}
	return res.RowsAffected()
}

// GraduateLevel marks active students of a terminal level as graduated and
// clears their level. Returns the number of students graduated.
func (r *PrincipalRepository) GraduateLevel(ctx context.Context, fromLevelID string, majorID *string, ts time.Time) (int64, error) {
	query := `UPDATE principals SET account_status = $2, level_id = NULL, updated_at = $3 WHERE role = $4 AND account_status = $5 AND level_id = $1`
	args := []interface{}{fromLevelID, models.StatusGraduated, ts, models.RoleStudent, models.StatusActive}
	if majorID != nil {
		query += ` AND major_id = $6`
		args = append(args, *majorID)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("graduate level: %w", err)
	}
	return res.RowsAffected()
}

// CreateAuditLog persists an audit trail record.
func (r *PrincipalRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, principal_id, action, resource, resource_id, details, ip_address, user_agent, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query, log.ID, log.PrincipalID, log.Action, log.Resource, log.ResourceID, log.Details, log.IPAddress, log.UserAgent, log.CreatedAt); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
