// Package scoring оценивает присланный код контракта. Оценка эвристическая:
// набор шаблонов с весами для каждой категории челленджа.
package scoring

import (
	"strings"

	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
)

// Scorer никогда не возвращает ошибку: для любого кода и категории
// результат имеет фиксированную форму, оценки лежат в [0,1].
type Scorer interface {
	Score(code string, category models.Category) models.Feedback
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(code string, category models.Category) models.Feedback

func (f ScorerFunc) Score(code string, category models.Category) models.Feedback {
	return f(code, category)
}

// Fixed returns a Scorer that always yields fb. Used by tests and demos.
func Fixed(fb models.Feedback) Scorer {
	return ScorerFunc(func(string, models.Category) models.Feedback {
		out := fb
		out.Recommendations = append([]string(nil), fb.Recommendations...)
		return out
	})
}

type axis int

const (
	axisGas axis = iota
	axisSecurity
)

type rule struct {
	axis           axis
	weight         float64
	match          func(code string) bool
	praise         string
	recommendation string
}

func contains(subs ...string) func(string) bool {
	return func(code string) bool {
		for _, s := range subs {
			if strings.Contains(code, s) {
				return true
			}
		}
		return false
	}
}

func usesSizedIntegers(code string) bool {
	if !strings.Contains(code, "uint256") {
		return false
	}
	return contains("uint8", "uint16", "uint32", "uint64", "uint128")(code)
}

// Веса газовых правил в сумме дают 1.0, иначе победа в gas_optimization
// была бы недостижима.
var gasRules = []rule{
	{axisGas, 0.20, usesSizedIntegers, "Good use of appropriate integer sizes.", "Consider using smaller uint types where appropriate"},
	{axisGas, 0.20, contains("memory"), "Using memory storage appropriately.", "Consider using memory for temporary variables"},
	{axisGas, 0.15, contains("view", "pure"), "Proper use of view/pure functions.", "Mark read-only functions as view or pure"},
	{axisGas, 0.15, contains("calldata"), "Read-only arguments passed as calldata.", "Use calldata for external read-only array and string arguments"},
	{axisGas, 0.15, contains("unchecked"), "Unchecked arithmetic where overflow is impossible.", "Wrap provably safe loop counters in unchecked blocks"},
	{axisGas, 0.15, contains("immutable", "constant"), "Constants and immutables avoid storage reads.", "Declare values fixed at deploy time as constant or immutable"},
	{axisSecurity, 0.40, contains("require"), "Using require statements for validation.", "Add input validation with require statements"},
}

var securityRules = []rule{
	{axisSecurity, 0.50, func(code string) bool { return strings.Contains(strings.ToLower(code), "reentrancy") }, "Potential reentrancy vulnerability identified.", ""},
	{axisSecurity, 0.30, contains("selfdestruct"), "Use of selfdestruct identified - can be dangerous.", ""},
	{axisSecurity, 0.40, contains("tx.origin"), "Using tx.origin for authentication is vulnerable.", ""},
	{axisSecurity, 0.20, contains("require", "assert"), "Using validation checks.", "Add input validation with require statements"},
}

type profile struct {
	rules              []rule
	baseGas            float64
	fallbackGas        float64
	fallbackSecurity   float64
	fallbackFeedback   string
	fallbackRecommends []string
}

var profiles = map[models.Category]profile{
	models.CategoryGasOptimization: {
		rules:              gasRules,
		fallbackGas:        0.3,
		fallbackSecurity:   0.2,
		fallbackFeedback:   "Basic implementation detected.",
		fallbackRecommends: []string{"Consider using events for important state changes"},
	},
	models.CategorySecurityExploit: {
		rules:              securityRules,
		baseGas:            0.1,
		fallbackSecurity:   0.3,
		fallbackFeedback:   "Basic security implementation detected.",
		fallbackRecommends: []string{"Consider using OpenZeppelin's security contracts"},
	},
}

// HeuristicScorer: эвристика на основе шаблонов. Нулевое значение готово
// к использованию.
type HeuristicScorer struct{}

func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

func (HeuristicScorer) Score(code string, category models.Category) models.Feedback {
	p, ok := profiles[category]
	if !ok {
		return models.Feedback{
			GasScore:        0.5,
			SecurityScore:   0.5,
			Feedback:        "Standard implementation.",
			Recommendations: []string{"Review gas optimization techniques", "Consider security best practices"},
		}
	}

	gas, security := p.baseGas, 0.0
	var (
		praise          []string
		recommendations []string
	)
	for _, r := range p.rules {
		if r.match(code) {
			if r.axis == axisGas {
				gas += r.weight
			} else {
				security += r.weight
			}
			praise = append(praise, r.praise)
		} else if r.recommendation != "" {
			recommendations = append(recommendations, r.recommendation)
		}
	}

	if gas == 0 {
		gas = p.fallbackGas
	}
	if security == 0 {
		security = p.fallbackSecurity
	}
	feedback := strings.Join(praise, " ")
	if feedback == "" {
		feedback = p.fallbackFeedback
	}
	if len(recommendations) == 0 {
		recommendations = append([]string(nil), p.fallbackRecommends...)
	}

	return models.Feedback{
		GasScore:        clamp(gas),
		SecurityScore:   clamp(security),
		Feedback:        feedback,
		Recommendations: recommendations,
	}
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
