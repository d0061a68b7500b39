package bodycomp

// PopulationStat holds the mean and standard deviation (cm) of one body
// circumference for one sex.
type PopulationStat struct {
	Mean float64
	Std  float64
}

// Reference is an immutable population table keyed by sex and canonical
// measurement key. Use DefaultReference for the built-in NHANES table or
// NewReference to supply another one.
type Reference struct {
	stats map[Sex]map[string]PopulationStat
}

// NewReference copies the given table so later changes by the caller do not
// leak into estimators built from it.
func NewReference(table map[Sex]map[string]PopulationStat) *Reference {
	stats := make(map[Sex]map[string]PopulationStat, len(table))
	for sex, byKey := range table {
		inner := make(map[string]PopulationStat, len(byKey))
		for k, v := range byKey {
			inner[k] = v
		}
		stats[sex] = inner
	}
	return &Reference{stats: stats}
}

// Lookup returns the population stat for a canonical key. Paired keys must be
// passed without their _l/_r suffix.
func (r *Reference) Lookup(sex Sex, key string) (PopulationStat, bool) {
	if r == nil {
		return PopulationStat{}, false
	}
	s, ok := r.stats[sex][key]
	return s, ok
}

// DefaultReference returns the adult circumference table derived from
// NHANES 2017-2020.
func DefaultReference() *Reference {
	return NewReference(map[Sex]map[string]PopulationStat{
		Male: {
			"chest":    {103.5, 9.8},
			"waist":    {98.0, 14.2},
			"hips":     {103.8, 9.1},
			"neck":     {39.5, 2.8},
			"shoulder": {119.0, 7.5},
			"bicep":    {33.5, 4.2},
			"forearm":  {28.5, 2.5},
			"thigh":    {56.0, 6.0},
			"calf":     {38.5, 3.5},
			"wrist":    {17.5, 1.2},
			"ankle":    {23.5, 1.8},
		},
		Female: {
			"chest":    {97.0, 11.5},
			"waist":    {92.5, 15.5},
			"hips":     {108.0, 12.0},
			"neck":     {34.5, 2.5},
			"shoulder": {105.0, 7.0},
			"bicep":    {30.0, 4.5},
			"forearm":  {25.0, 2.5},
			"thigh":    {57.5, 7.0},
			"calf":     {37.0, 3.8},
			"wrist":    {15.5, 1.0},
			"ankle":    {22.0, 1.8},
		},
	})
}
