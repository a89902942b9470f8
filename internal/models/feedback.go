package models

// Feedback is the fixed-shape record produced by the scoring port.
// @Description Heuristic evaluation of submitted contract code
type Feedback struct {
	GasScore        float64  `json:"gas_score" example:"0.7"`
	SecurityScore   float64  `json:"security_score" example:"0.4"`
	Feedback        string   `json:"feedback"`
	Recommendations []string `json:"recommendations"`
}

// ScoreFor returns the 0-100 score that counts for a challenge of category c:
// the gas score for gas optimization challenges and the security score otherwise.
func (f Feedback) ScoreFor(c Category) float64 {
	if c == CategoryGasOptimization {
		return f.GasScore * 100
	}
	return f.SecurityScore * 100
}
