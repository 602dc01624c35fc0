package plagiarism

const (
	RiskClean            = "clean"
	RiskSuspicious       = "suspicious"
	RiskHighlySuspicious = "highly_suspicious"
	RiskNearCopy         = "near_copy"
)

// RiskThresholds are the lower bounds of each risk level above clean
type RiskThresholds struct {
	Suspicious       float64
	HighlySuspicious float64
	NearCopy         float64
}

func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{
		Suspicious:       0.3,
		HighlySuspicious: 0.6,
		NearCopy:         0.85,
	}
}

// RiskLevel maps a similarity in [0, 1] to a risk level
func RiskLevel(similarity float64, t RiskThresholds) string {
	if similarity < t.Suspicious {
		return RiskClean
	} else if similarity < t.HighlySuspicious {
		return RiskSuspicious
	} else if similarity < t.NearCopy {
		return RiskHighlySuspicious
	}
	return RiskNearCopy
}
