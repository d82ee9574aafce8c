package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ocupalis/riskplan/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Companies ---

func (s *PostgresStore) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var c models.Company
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, tax_id, created_at, updated_at FROM companies WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.TaxID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) GetDefaultCompany(ctx context.Context) (*models.Company, error) {
	var c models.Company
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, tax_id, created_at, updated_at FROM companies WHERE name = 'default' LIMIT 1`,
	).Scan(&c.ID, &c.Name, &c.TaxID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get default company: %w", err)
	}
	return &c, nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.CompanyID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, company_id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		key.ID, key.CompanyID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context, companyID uuid.UUID) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE company_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.CompanyID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID, companyID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`, id, companyID)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Risk Records ---

// ListRiskRecords loads every individual risk-exposure record for a company,
// joined with sector/role names and the assessed employee's id. Records whose
// assessment response could not be linked to an employee come back with a
// NULL employee_id and still count toward the exposure distribution.
func (s *PostgresStore) ListRiskRecords(ctx context.Context, companyID uuid.UUID) ([]models.RiskRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT re.sector_id, sec.name, re.role_id, rol.name, re.exposure_level, re.employee_id
		 FROM risk_exposures re
		 JOIN sectors sec ON sec.id = re.sector_id
		 LEFT JOIN roles rol ON rol.id = re.role_id
		 WHERE re.company_id = $1`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list risk records: %w", err)
	}
	defer rows.Close()

	var records []models.RiskRecord
	for rows.Next() {
		var r models.RiskRecord
		if err := rows.Scan(&r.SectorID, &r.SectorName, &r.RoleID, &r.RoleName,
			&r.ExposureLevel, &r.EmployeeID); err != nil {
			return nil, fmt.Errorf("scan risk record: %w", err)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("invalid risk record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// --- Action Plans ---

const actionPlanColumns = `id, company_id, sector_id, title, description, status, priority, risk_level, start_date, due_date, created_at, updated_at`

func scanActionPlan(row pgx.Row) (*models.ActionPlan, error) {
	var p models.ActionPlan
	err := row.Scan(&p.ID, &p.CompanyID, &p.SectorID, &p.Title, &p.Description,
		&p.Status, &p.Priority, &p.RiskLevel, &p.StartDate, &p.DueDate,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindOpenActionPlan looks up a draft or in-progress plan for the
// (company, sector, risk level) triple. This is the engine's dedup check.
func (s *PostgresStore) FindOpenActionPlan(ctx context.Context, companyID, sectorID uuid.UUID, level models.RiskLevel) (*models.ActionPlan, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+actionPlanColumns+` FROM action_plans
		 WHERE company_id = $1 AND sector_id = $2 AND risk_level = $3
		   AND status IN ('draft', 'in_progress')
		 LIMIT 1`, companyID, sectorID, level)
	plan, err := scanActionPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find open action plan: %w", err)
	}
	return plan, nil
}

// CreateActionPlanWithItems inserts a plan and its sub-items in one
// transaction, so a failed item insert never leaves an item-less open plan
// behind to block later runs. A unique violation on the open-plan index rolls
// everything back and reports ErrDuplicateOpenPlan.
func (s *PostgresStore) CreateActionPlanWithItems(ctx context.Context, plan *models.ActionPlan, items []models.ActionPlanItem) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin plan transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO action_plans (`+actionPlanColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		plan.ID, plan.CompanyID, plan.SectorID, plan.Title, plan.Description,
		plan.Status, plan.Priority, plan.RiskLevel, plan.StartDate, plan.DueDate,
		plan.CreatedAt, plan.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateOpenPlan
		}
		return fmt.Errorf("create action plan: %w", err)
	}

	if len(items) > 0 {
		batch := &pgx.Batch{}
		for _, item := range items {
			batch.Queue(
				`INSERT INTO action_plan_items (id, action_plan_id, title, description, priority, estimated_hours, due_date, department, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				item.ID, item.ActionPlanID, item.Title, item.Description, item.Priority,
				item.EstimatedHours, item.DueDate, item.Department, item.CreatedAt)
		}

		results := tx.SendBatch(ctx, batch)
		for range items {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("create action plan items: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("create action plan items: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) ListActionPlans(ctx context.Context, filter PlanFilter) ([]*models.ActionPlan, int, error) {
	// Build WHERE clause dynamically
	conditions := []string{"company_id = $1"}
	args := []any{filter.CompanyID}
	argIdx := 2

	if filter.SectorID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("sector_id = $%d", argIdx))
		args = append(args, filter.SectorID)
		argIdx++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.RiskLevel != "" {
		conditions = append(conditions, fmt.Sprintf("risk_level = $%d", argIdx))
		args = append(args, filter.RiskLevel)
		argIdx++
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, filter.Since)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	// Count query
	var total int
	countQuery := "SELECT COUNT(*) FROM action_plans WHERE " + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count action plans: %w", err)
	}

	// Normalize pagination
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	// Data query
	dataQuery := fmt.Sprintf(
		`SELECT `+actionPlanColumns+` FROM action_plans WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list action plans: %w", err)
	}
	defer rows.Close()

	var plans []*models.ActionPlan
	for rows.Next() {
		plan, err := scanActionPlan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan action plan: %w", err)
		}
		plans = append(plans, plan)
	}
	return plans, total, rows.Err()
}

func (s *PostgresStore) GetActionPlan(ctx context.Context, id uuid.UUID, companyID uuid.UUID) (*models.ActionPlan, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+actionPlanColumns+` FROM action_plans WHERE id = $1 AND company_id = $2`,
		id, companyID)
	plan, err := scanActionPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get action plan: %w", err)
	}
	return plan, nil
}

func (s *PostgresStore) ListActionPlanItems(ctx context.Context, planID uuid.UUID) ([]*models.ActionPlanItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, action_plan_id, title, description, priority, estimated_hours, due_date, department, created_at
		 FROM action_plan_items WHERE action_plan_id = $1 ORDER BY due_date ASC`, planID)
	if err != nil {
		return nil, fmt.Errorf("list action plan items: %w", err)
	}
	defer rows.Close()

	var items []*models.ActionPlanItem
	for rows.Next() {
		var it models.ActionPlanItem
		if err := rows.Scan(&it.ID, &it.ActionPlanID, &it.Title, &it.Description,
			&it.Priority, &it.EstimatedHours, &it.DueDate, &it.Department, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan action plan item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// isUniqueViolation checks if a pgx error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
