package badge

import (
	"fmt"

	apperrors "github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/errors"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
)

// Policy определяет, на сколько уровней значок может подняться за один проход.
type Policy string

const (
	// PolicySingleStep: не больше одного перехода на тип за проход.
	// Значок догоняет метрику за несколько вызовов Evaluate.
	PolicySingleStep Policy = "single_step"
	// PolicyCascade: сразу до максимального уровня, который позволяет метрика.
	PolicyCascade Policy = "cascade"
)

// ParsePolicy validates a configured policy name.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicySingleStep, PolicyCascade:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown progression policy %q", s)
}

// TransitionKind различает создание значка и повышение уровня.
type TransitionKind string

const (
	TransitionCreate  TransitionKind = "create"
	TransitionLevelUp TransitionKind = "level_up"
)

// Transition: одно решение движка. From == 0 означает, что значка ещё нет.
type Transition struct {
	Type   models.BadgeType `json:"badge_type"`
	Code   uint8            `json:"code"`
	Kind   TransitionKind   `json:"kind"`
	From   int              `json:"from_level"`
	To     int              `json:"to_level"`
	Metric int              `json:"metric"`
}

// Steps returns the individual one-level steps the transition consists of.
// Under the cascade policy a single transition can span several levels.
func (t Transition) Steps() int {
	return t.To - t.From
}

type Engine struct {
	catalog *Catalog
	policy  Policy
}

func NewEngine(catalog *Catalog, policy Policy) *Engine {
	if policy == "" {
		policy = PolicySingleStep
	}
	return &Engine{catalog: catalog, policy: policy}
}

func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// Evaluate чистая функция: по истории и текущим уровням возвращает
// переходы в порядке каталога. Уровни вне [0,5] в current считаются
// нарушением инварианта.
func (e *Engine) Evaluate(history []models.HistoryEntry, current map[models.BadgeType]int) ([]Transition, error) {
	for t, level := range current {
		if _, err := e.catalog.Lookup(t); err != nil {
			return nil, err
		}
		if level < 0 || level > models.MaxBadgeLevel {
			return nil, apperrors.NewInvariantError(
				fmt.Sprintf("badge %s has level %d outside [0,%d]", t, level, models.MaxBadgeLevel))
		}
	}

	var transitions []Transition
	for _, entry := range e.catalog.entries {
		level := current[entry.Type]
		if level >= models.MaxBadgeLevel {
			continue
		}

		value := entry.Metric(history)
		target := e.next(entry, level, value)
		if target <= level {
			continue
		}

		kind := TransitionLevelUp
		if level == 0 {
			kind = TransitionCreate
		}
		transitions = append(transitions, Transition{
			Type:   entry.Type,
			Code:   entry.Code,
			Kind:   kind,
			From:   level,
			To:     target,
			Metric: value,
		})
	}
	return transitions, nil
}

func (e *Engine) next(entry Entry, level, value int) int {
	if e.policy == PolicyCascade {
		return entry.LevelFor(value)
	}
	// следующий порог имеет индекс, равный текущему уровню
	if value >= entry.Thresholds[level] {
		return level + 1
	}
	return level
}
