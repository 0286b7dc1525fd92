// File: internal/repository/plan/plan_repository.go
package plan

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
)

var ErrPlanNotFound = errors.New("plan not found")

// PlanRepository interface for subscription plan lookups
type PlanRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Plan, error)
	List(ctx context.Context) ([]domain.Plan, error)
	Upsert(ctx context.Context, plans []domain.Plan) error
}

// GormPlanRepository implements PlanRepository using GORM
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new plan repository
func NewGormPlanRepository(db *gorm.DB) PlanRepository {
	return &GormPlanRepository{db: db}
}

// FindByID returns ErrPlanNotFound when no plan has the given id.
func (r *GormPlanRepository) FindByID(ctx context.Context, id string) (*domain.Plan, error) {
	if id == "" {
		return nil, ErrPlanNotFound
	}
	var p domain.Plan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns every plan, cheapest first.
func (r *GormPlanRepository) List(ctx context.Context) ([]domain.Plan, error) {
	plans := []domain.Plan{}
	err := r.db.WithContext(ctx).Order("credits_per_month ASC, id ASC").Find(&plans).Error
	return plans, err
}

// Upsert inserts the plans or refreshes the existing rows by id.
func (r *GormPlanRepository) Upsert(ctx context.Context, plans []domain.Plan) error {
	if len(plans) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "price_id", "tier", "credits_per_month", "updated_at"}),
	}).Create(&plans).Error
}

type catalogFile struct {
	Plans []domain.Plan `yaml:"plans"`
}

// LoadCatalog parses a YAML plan catalog.
func LoadCatalog(path string) ([]domain.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan catalog: %w", err)
	}
	var catalog catalogFile
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse plan catalog: %w", err)
	}
	for i, p := range catalog.Plans {
		if p.ID == "" || p.PriceID == "" {
			return nil, fmt.Errorf("plan catalog entry %d: id and price_id are required", i)
		}
		if p.Tier == "" {
			catalog.Plans[i].Tier = domain.TierBasic
		}
	}
	return catalog.Plans, nil
}

// SeedFromFile loads the catalog at path into the repository.
func SeedFromFile(ctx context.Context, repo PlanRepository, path string) (int, error) {
	plans, err := LoadCatalog(path)
	if err != nil {
		return 0, err
	}
	if err := repo.Upsert(ctx, plans); err != nil {
		return 0, fmt.Errorf("seed plans: %w", err)
	}
	return len(plans), nil
}
