package catalog

import "fmt"

// Thresholds split the normalized score into tiers. A score equal to a
// threshold falls into the lower tier.
type Thresholds struct {
	Low    int `json:"LOW" yaml:"LOW"`
	Medium int `json:"MEDIUM" yaml:"MEDIUM"`
}

// ImpactLevels select which answers are reported as risk factors.
type ImpactLevels struct {
	Critical int `json:"CRITICAL" yaml:"CRITICAL"`
	Moderate int `json:"MODERATE" yaml:"MODERATE"`
}

// Rules is the scoring rules document.
type Rules struct {
	Thresholds   Thresholds   `json:"thresholds" yaml:"thresholds"`
	ImpactLevels ImpactLevels `json:"impact_levels" yaml:"impact_levels"`
}

func DefaultRules() Rules {
	return Rules{
		Thresholds:   Thresholds{Low: 30, Medium: 70},
		ImpactLevels: ImpactLevels{Critical: 20, Moderate: 10},
	}
}

func (r Rules) Validate() error {
	if r.Thresholds.Low > r.Thresholds.Medium {
		return fmt.Errorf("thresholds: LOW (%d) above MEDIUM (%d)", r.Thresholds.Low, r.Thresholds.Medium)
	}
	if r.ImpactLevels.Moderate > r.ImpactLevels.Critical {
		return fmt.Errorf("impact_levels: MODERATE (%d) above CRITICAL (%d)", r.ImpactLevels.Moderate, r.ImpactLevels.Critical)
	}
	return nil
}
