// File: internal/domain/plan.go
package domain

import "time"

type PlanTier string

const (
	TierFree       PlanTier = "free"
	TierBasic      PlanTier = "basic"
	TierPremium    PlanTier = "premium"
	TierEnterprise PlanTier = "enterprise"
)

// Plan is a purchasable subscription, priced by the payment provider's price id.
type Plan struct {
	ID              string    `json:"id" yaml:"id" gorm:"primaryKey;size:64"`
	Name            string    `json:"name" yaml:"name" gorm:"not null"`
	Description     string    `json:"description,omitempty" yaml:"description"`
	PriceID         string    `json:"price_id" yaml:"price_id" gorm:"not null"`
	Tier            PlanTier  `json:"tier" yaml:"tier" gorm:"size:16;not null"`
	CreditsPerMonth int       `json:"credits_per_month" yaml:"credits_per_month"`
	CreatedAt       time.Time `json:"created_at" yaml:"-"`
	UpdatedAt       time.Time `json:"updated_at" yaml:"-"`
}

func (Plan) TableName() string {
	return "subscription_plans"
}
