package bodycomp

import (
	"math"
	"sort"
	"strings"
)

// Sex selects the sex-specific coefficients and reference table.
type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

// ParseSex accepts "male"/"female" (case-insensitive) and the m/f shorthands.
func ParseSex(s string) (Sex, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male, true
	case "female", "f":
		return Female, true
	}
	return "", false
}

// Profile is the caller-owned bio used for one computation.
type Profile struct {
	HeightCm float64 `json:"height_cm"`
	Age      int     `json:"age"`
	Sex      Sex     `json:"sex"`
}

// Measurements maps a body-part key to a circumference in cm.
// Paired limbs use _l / _r suffixes, e.g. "bicep_l".
type Measurements map[string]float64

// pairedKeys are the limbs measured on both sides.
var pairedKeys = []string{"bicep", "forearm", "thigh", "calf"}

var keyAliases = map[string]string{
	"abdomen":   "waist",
	"hip":       "hips",
	"shoulders": "shoulder",
	"biceps":    "bicep",
	"forearms":  "forearm",
	"thighs":    "thigh",
	"calves":    "calf",
}

// splitKey lower-cases a raw key and splits off a side suffix.
func splitKey(raw string) (base, side string) {
	k := strings.ToLower(strings.TrimSpace(raw))
	k = strings.NewReplacer(" ", "_", "-", "_").Replace(k)
	switch {
	case strings.HasSuffix(k, "_left"):
		return strings.TrimSuffix(k, "_left"), "_l"
	case strings.HasSuffix(k, "_right"):
		return strings.TrimSuffix(k, "_right"), "_r"
	case strings.HasSuffix(k, "_l"):
		return strings.TrimSuffix(k, "_l"), "_l"
	case strings.HasSuffix(k, "_r"):
		return strings.TrimSuffix(k, "_r"), "_r"
	}
	return k, ""
}

// Normalize returns a copy with canonical keys. Aliases are resolved, and a
// key that was already canonical wins over an alias for the same part.
// Non-positive and non-finite values are dropped.
func (m Measurements) Normalize() Measurements {
	out := make(Measurements, len(m))
	if len(m) == 0 {
		return out
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	canonical := make(map[string]bool, len(m))
	for _, raw := range keys {
		v := m[raw]
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		base, side := splitKey(raw)
		alias, isAlias := keyAliases[base]
		if isAlias {
			base = alias
		}
		key := base + side
		if isAlias && canonical[key] {
			continue
		}
		out[key] = v
		if !isAlias {
			canonical[key] = true
		}
	}
	return out
}

func (m Measurements) get(key string) (float64, bool) {
	v, ok := m[key]
	return v, ok
}

// paired returns the left/right values of a paired key.
func (m Measurements) paired(key string) (left, right float64, hasLeft, hasRight bool) {
	left, hasLeft = m[key+"_l"]
	right, hasRight = m[key+"_r"]
	return
}

func isPaired(base string) bool {
	for _, k := range pairedKeys {
		if k == base {
			return true
		}
	}
	return false
}
