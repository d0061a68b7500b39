// Package records flags personal records against an exercise's prior bests.
//
// Detection is only as fresh as the Bests handed in. Reading the bests and
// inserting the new set must happen as one unit per exercise, or two
// concurrent inserts can both be flagged against the same stale maximum.
package records

// Type names which best a set broke.
type Type string

const (
	Weight   Type = "weight"
	Volume   Type = "volume"
	Duration Type = "duration"
)

// Candidate is the set being evaluated. Nil fields were not recorded.
type Candidate struct {
	Weight          *float64
	Reps            *int
	DurationSeconds *int
}

// Volume returns weight x reps when both are recorded.
func (c Candidate) Volume() (float64, bool) {
	if c.Weight == nil || c.Reps == nil {
		return 0, false
	}
	return *c.Weight * float64(*c.Reps), true
}

// Bests are the all-time maxima for one exercise, excluding the candidate.
// Zero means no prior value.
type Bests struct {
	MaxWeight   float64 `json:"max_weight"`
	MaxVolume   float64 `json:"max_volume"`
	MaxDuration int     `json:"max_duration"`
}

// Detect reports whether c beats prior. Checks run weight, volume, duration;
// the first strict improvement wins. Ties are not records.
func Detect(prior Bests, c Candidate) (Type, bool) {
	if c.Weight != nil && *c.Weight > prior.MaxWeight {
		return Weight, true
	}
	if v, ok := c.Volume(); ok && v > prior.MaxVolume {
		return Volume, true
	}
	if c.DurationSeconds != nil && *c.DurationSeconds > prior.MaxDuration {
		return Duration, true
	}
	return "", false
}

// BestsOf folds a history of sets into their maxima.
func BestsOf(history []Candidate) Bests {
	var b Bests
	for _, c := range history {
		b = b.Include(c)
	}
	return b
}

// Include returns b updated with c, as if c had been persisted.
func (b Bests) Include(c Candidate) Bests {
	if c.Weight != nil && *c.Weight > b.MaxWeight {
		b.MaxWeight = *c.Weight
	}
	if v, ok := c.Volume(); ok && v > b.MaxVolume {
		b.MaxVolume = v
	}
	if c.DurationSeconds != nil && *c.DurationSeconds > b.MaxDuration {
		b.MaxDuration = *c.DurationSeconds
	}
	return b
}
