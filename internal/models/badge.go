package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxBadgeLevel is the last level a badge can reach.
const MaxBadgeLevel = 5

// BadgeType is the closed set of badge kinds. The order of AllBadgeTypes
// matches the integer codes shared with the ledger.
type BadgeType string

const (
	BadgeGasOptimizer        BadgeType = "gas_optimizer"
	BadgeSecurityExpert      BadgeType = "security_expert"
	BadgeVulnerabilityHunter BadgeType = "vulnerability_hunter"
	BadgeTopContributor      BadgeType = "top_contributor"
	BadgeChallengeMaster     BadgeType = "challenge_master"
	BadgeAvalancheSpecialist BadgeType = "avalanche_specialist"
)

var allBadgeTypes = []BadgeType{
	BadgeGasOptimizer,
	BadgeSecurityExpert,
	BadgeVulnerabilityHunter,
	BadgeTopContributor,
	BadgeChallengeMaster,
	BadgeAvalancheSpecialist,
}

// AllBadgeTypes returns every badge type in ledger-code order.
func AllBadgeTypes() []BadgeType {
	out := make([]BadgeType, len(allBadgeTypes))
	copy(out, allBadgeTypes)
	return out
}

// Code returns the ledger code of the badge type.
func (t BadgeType) Code() (uint8, error) {
	switch t {
	case BadgeGasOptimizer:
		return 0, nil
	case BadgeSecurityExpert:
		return 1, nil
	case BadgeVulnerabilityHunter:
		return 2, nil
	case BadgeTopContributor:
		return 3, nil
	case BadgeChallengeMaster:
		return 4, nil
	case BadgeAvalancheSpecialist:
		return 5, nil
	}
	return 0, fmt.Errorf("unknown badge type %q", string(t))
}

// ParseBadgeType converts a stored or user-supplied value into a BadgeType.
func ParseBadgeType(s string) (BadgeType, error) {
	t := BadgeType(s)
	if _, err := t.Code(); err != nil {
		return "", err
	}
	return t, nil
}

// Badge представляет значок пользователя. На пару (UserID, Type) существует
// не более одной записи; уровень только растёт.
// @Description Per-user, per-type progression badge
type Badge struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Type        BadgeType `json:"badge_type" example:"gas_optimizer"`
	Level       int       `json:"level" example:"2" minimum:"1" maximum:"5"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	SyncRef     *string   `json:"transaction_hash,omitempty"`

	// OnchainLevel уровень, подтверждённый леджером; 0 если значок не выпущен.
	OnchainLevel int       `json:"onchain_level" example:"1"`
	IsOnchain    bool      `json:"is_onchain"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
