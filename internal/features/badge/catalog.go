// Package badge содержит каталог значков и движок прогрессии, который по
// истории отправок решает, какие значки создать или повысить.
package badge

import (
	"fmt"

	apperrors "github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/errors"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
)

// DefaultSpecialistChain is the chain tracked by avalanche_specialist unless configured otherwise.
const DefaultSpecialistChain = "avalanche"

// Metric извлекает из истории число, по которому считаются уровни.
type Metric func(history []models.HistoryEntry) int

// Entry описывает один тип значка: код в леджере, метрику и пороги.
// Уровень k открывается, когда метрика >= Thresholds[k-1].
type Entry struct {
	Type        models.BadgeType
	Code        uint8
	Title       string
	Description string
	Thresholds  [models.MaxBadgeLevel]int
	metric      Metric
}

// Metric computes the tracked value over history.
func (e Entry) Metric(history []models.HistoryEntry) int {
	return e.metric(history)
}

// LevelFor returns the highest level the metric value qualifies for, 0 if none.
func (e Entry) LevelFor(value int) int {
	level := 0
	for i, threshold := range e.Thresholds {
		if value >= threshold {
			level = i + 1
		}
	}
	return level
}

// ImageURL is the static artwork path of the badge type.
func (e Entry) ImageURL() string {
	return fmt.Sprintf("/static/badges/%s.svg", e.Type)
}

type Catalog struct {
	entries []Entry
	index   map[models.BadgeType]int
}

// NewCatalog строит каталог. specialistChain задаёт сеть, победы в
// которой считает avalanche_specialist.
func NewCatalog(specialistChain string) (*Catalog, error) {
	if specialistChain == "" {
		specialistChain = DefaultSpecialistChain
	}

	types := models.AllBadgeTypes()
	c := &Catalog{
		entries: make([]Entry, 0, len(types)),
		index:   make(map[models.BadgeType]int, len(types)),
	}
	for _, t := range types {
		entry, err := newEntry(t, specialistChain)
		if err != nil {
			return nil, err
		}
		c.index[t] = len(c.entries)
		c.entries = append(c.entries, entry)
	}
	return c, nil
}

// MustCatalog is NewCatalog for static setups; it panics on a broken enumeration.
func MustCatalog(specialistChain string) *Catalog {
	c, err := NewCatalog(specialistChain)
	if err != nil {
		panic(err)
	}
	return c
}

// Entries returns the catalog in ledger-code order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup возвращает описание типа. Неизвестный тип означает ошибку
// программы, а не пользовательского ввода.
func (c *Catalog) Lookup(t models.BadgeType) (Entry, error) {
	i, ok := c.index[t]
	if !ok {
		return Entry{}, apperrors.NewInvariantError(fmt.Sprintf("badge type %q is not in the catalog", t))
	}
	return c.entries[i], nil
}

func newEntry(t models.BadgeType, specialistChain string) (Entry, error) {
	code, err := t.Code()
	if err != nil {
		return Entry{}, apperrors.NewInvariantError(err.Error())
	}
	e := Entry{Type: t, Code: code}

	switch t {
	case models.BadgeGasOptimizer:
		e.Title = "Gas Optimizer"
		e.Description = "Awarded for winning gas optimization challenges"
		e.Thresholds = [models.MaxBadgeLevel]int{1, 3, 10, 25, 50}
		e.metric = winsIn(models.CategoryGasOptimization)
	case models.BadgeSecurityExpert:
		e.Title = "Security Expert"
		e.Description = "Awarded for winning security exploit challenges"
		e.Thresholds = [models.MaxBadgeLevel]int{1, 3, 10, 25, 50}
		e.metric = winsIn(models.CategorySecurityExploit)
	case models.BadgeVulnerabilityHunter:
		e.Title = "Vulnerability Hunter"
		e.Description = "Awarded for breaking distinct security exploit challenges"
		e.Thresholds = [models.MaxBadgeLevel]int{1, 3, 5, 10, 20}
		e.metric = distinctWinsIn(models.CategorySecurityExploit)
	case models.BadgeTopContributor:
		e.Title = "Top Contributor"
		e.Description = "Awarded for the number of submissions"
		e.Thresholds = [models.MaxBadgeLevel]int{5, 15, 50, 100, 250}
		e.metric = totalSubmissions
	case models.BadgeChallengeMaster:
		e.Title = "Challenge Master"
		e.Description = "Awarded for winning challenges of any kind"
		e.Thresholds = [models.MaxBadgeLevel]int{3, 10, 25, 50, 100}
		e.metric = totalWins
	case models.BadgeAvalancheSpecialist:
		e.Title = "Avalanche Specialist"
		e.Description = fmt.Sprintf("Awarded for winning challenges on %s", specialistChain)
		e.Thresholds = [models.MaxBadgeLevel]int{1, 5, 15, 30, 60}
		e.metric = winsOnChain(specialistChain)
	default:
		return Entry{}, apperrors.NewInvariantError(fmt.Sprintf("no metric for badge type %q", t))
	}
	return e, nil
}

func winsIn(category models.Category) Metric {
	return func(history []models.HistoryEntry) int {
		n := 0
		for _, h := range history {
			if h.IsWinner && h.Category == category {
				n++
			}
		}
		return n
	}
}

func distinctWinsIn(category models.Category) Metric {
	return func(history []models.HistoryEntry) int {
		seen := make(map[string]struct{})
		for _, h := range history {
			if h.IsWinner && h.Category == category {
				seen[h.ChallengeID.String()] = struct{}{}
			}
		}
		return len(seen)
	}
}

func winsOnChain(chain string) Metric {
	return func(history []models.HistoryEntry) int {
		n := 0
		for _, h := range history {
			if h.IsWinner && h.Chain == chain {
				n++
			}
		}
		return n
	}
}

func totalSubmissions(history []models.HistoryEntry) int {
	return len(history)
}

func totalWins(history []models.HistoryEntry) int {
	n := 0
	for _, h := range history {
		if h.IsWinner {
			n++
		}
	}
	return n
}
