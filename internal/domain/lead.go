package domain

import "encoding/json"

// Extra keys carrying qualification assessments from the scoring service.
const (
	keyRequiredQualifications   = "required_qualifications"
	keyAdditionalQualifications = "additional_qualifications"
)

// Qualification is one requirement evaluated by the scoring service,
// with a match verdict and explanation. Match arrives as 0/1 or a
// boolean depending on the producer.
type Qualification struct {
	Requirement string          `json:"requirement"`
	Match       json.RawMessage `json:"match,omitempty"`
	MatchReason string          `json:"match_reason,omitempty"`
}

// Matched reports whether this qualification was judged a match.
func (q Qualification) Matched() bool {
	v, err := decodeFlexBool(q.Match)
	return err == nil && v != nil && *v
}

// MatchFraction is the matched/total tally for one qualification group.
type MatchFraction struct {
	Matched int
	Total   int
}

// Ratio returns the matched fraction, or 0 when the group is empty.
func (f MatchFraction) Ratio() float64 {
	if f.Total == 0 {
		return 0
	}
	return float64(f.Matched) / float64(f.Total)
}

// Qualifications decodes a qualification group out of the Extra bag.
// Missing or malformed groups read as empty.
func (d TaskData) Qualifications(key string) []Qualification {
	raw, ok := d.Extra[key]
	if !ok {
		return nil
	}
	var quals []Qualification
	if err := json.Unmarshal(raw, &quals); err != nil {
		return nil
	}
	return quals
}

// RequiredFraction tallies the required qualification matches.
func (d TaskData) RequiredFraction() MatchFraction {
	return tally(d.Qualifications(keyRequiredQualifications))
}

// AdditionalFraction tallies the additional qualification matches.
func (d TaskData) AdditionalFraction() MatchFraction {
	return tally(d.Qualifications(keyAdditionalQualifications))
}

// IsDecentLead applies the good-outcome rule: at least half of the
// required qualifications must match (and there must be some), and when
// additional qualifications exist, at least half of those must match too.
func (d TaskData) IsDecentLead() bool {
	req := d.RequiredFraction()
	if req.Total == 0 || req.Ratio() < 0.5 {
		return false
	}
	add := d.AdditionalFraction()
	if add.Total > 0 && add.Ratio() < 0.5 {
		return false
	}
	return true
}

func tally(quals []Qualification) MatchFraction {
	fr := MatchFraction{Total: len(quals)}
	for _, q := range quals {
		if q.Matched() {
			fr.Matched++
		}
	}
	return fr
}
