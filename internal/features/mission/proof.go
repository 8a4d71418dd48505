// Package mission — proof.go validates completion proofs per mission type.
package mission

import "encoding/json"

// Ad missions accept a watch at 90% of the required duration or more.
const adMinDurationRatio = 0.9

// ValidateProof checks a completion proof against the mission type.
//
//   - ad:     {"duration": N} with N >= 90% of the mission duration
//   - social: {"engagement_id": "...", "platform": "..."} both non-empty
//   - survey: {"responses": [...]} with at least one response
//   - anything else passes (permissive fallback for new types)
//
// An empty proof always fails.
func ValidateProof(m *Mission, proof string) bool {
	if proof == "" {
		return false
	}

	switch m.Type {
	case TypeAd:
		var data struct {
			Duration float64 `json:"duration"`
		}
		if err := json.Unmarshal([]byte(proof), &data); err != nil {
			return false
		}
		return data.Duration >= float64(m.Duration)*adMinDurationRatio

	case TypeSocial:
		var data struct {
			EngagementID string `json:"engagement_id"`
			Platform     string `json:"platform"`
		}
		if err := json.Unmarshal([]byte(proof), &data); err != nil {
			return false
		}
		// A real deployment would verify with the platform API; here we
		// only require both identifiers to be present.
		return data.EngagementID != "" && data.Platform != ""

	case TypeSurvey:
		var data struct {
			Responses []json.RawMessage `json:"responses"`
		}
		if err := json.Unmarshal([]byte(proof), &data); err != nil {
			return false
		}
		return len(data.Responses) > 0
	}

	return true
}
