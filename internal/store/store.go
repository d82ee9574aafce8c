package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ocupalis/riskplan/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// ErrDuplicateOpenPlan is returned when an insert collides with the partial
// unique index guarding "at most one open plan per (company, sector, risk
// level)". The engine treats it the same as finding the plan up front.
var ErrDuplicateOpenPlan = errors.New("open action plan already exists")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	GetDefaultCompany(ctx context.Context) (*models.Company, error)

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context, companyID uuid.UUID) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID, companyID uuid.UUID) error

	ListRiskRecords(ctx context.Context, companyID uuid.UUID) ([]models.RiskRecord, error)

	FindOpenActionPlan(ctx context.Context, companyID, sectorID uuid.UUID, level models.RiskLevel) (*models.ActionPlan, error)
	CreateActionPlanWithItems(ctx context.Context, plan *models.ActionPlan, items []models.ActionPlanItem) error
	ListActionPlans(ctx context.Context, filter PlanFilter) ([]*models.ActionPlan, int, error)
	GetActionPlan(ctx context.Context, id uuid.UUID, companyID uuid.UUID) (*models.ActionPlan, error)
	ListActionPlanItems(ctx context.Context, planID uuid.UUID) ([]*models.ActionPlanItem, error)
}

// PlanFilter narrows and paginates action plan listings.
type PlanFilter struct {
	CompanyID uuid.UUID
	SectorID  uuid.UUID
	Status    models.PlanStatus
	RiskLevel models.RiskLevel
	Since     time.Time
	Page      int
	Limit     int
}
