package bodycomp

import "math"

const (
	cmPerInch = 2.54
	lbPerKg   = 2.20462

	// MinBodyFat and MaxBodyFat bound every body-fat estimate.
	MinBodyFat = 2.0
	MaxBodyFat = 60.0
)

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// bodyFat clamps and rounds a raw estimate. Non-finite input yields nil.
func bodyFat(v float64) *float64 {
	if !finite(v) {
		return nil
	}
	v = round(math.Min(math.Max(v, MinBodyFat), MaxBodyFat), 1)
	return &v
}

func inches(cm float64) float64 { return cm / cmPerInch }

func bmi(weightKg, heightCm float64) (float64, bool) {
	if weightKg <= 0 || heightCm <= 0 {
		return 0, false
	}
	m := heightCm / 100
	return weightKg / (m * m), true
}

// BMR is the Mifflin-St Jeor basal metabolic rate in kcal/day. Non-finite
// inputs yield nil.
func BMR(weightKg float64, p Profile) *float64 {
	if weightKg <= 0 || p.HeightCm <= 0 {
		return nil
	}
	v := 10*weightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	if p.Sex == Male {
		v += 5
	} else {
		v -= 161
	}
	if !finite(v) {
		return nil
	}
	v = round(v, 1)
	return &v
}

// NavyBodyFat is the U.S. Navy circumference method. The formula is defined
// in inches; inputs are cm. Women additionally need hips.
func NavyBodyFat(p Profile, m Measurements) *float64 {
	waist, okW := m.get("waist")
	neck, okN := m.get("neck")
	if !okW || !okN || waist <= neck || p.HeightCm <= 0 {
		return nil
	}
	h := inches(p.HeightCm)
	var v float64
	if p.Sex == Male {
		v = 86.010*math.Log10(inches(waist-neck)) - 70.041*math.Log10(h) + 36.76
	} else {
		hips, ok := m.get("hips")
		if !ok {
			return nil
		}
		v = 163.205*math.Log10(inches(waist+hips-neck)) - 97.684*math.Log10(h) - 78.387
	}
	return bodyFat(v)
}

// ArmyBodyFat is the 2024 U.S. Army one-site tape method: abdomen in inches
// and body weight in pounds.
func ArmyBodyFat(weightKg float64, p Profile, m Measurements) *float64 {
	abdomen, ok := m.get("waist")
	if !ok || weightKg <= 0 {
		return nil
	}
	lb := weightKg * lbPerKg
	abd := inches(abdomen)
	var v float64
	if p.Sex == Male {
		v = -26.97 - 0.12*lb + 1.99*abd
	} else {
		v = -9.15 - 0.015*lb + 1.27*abd
	}
	return bodyFat(v)
}

// CunBaeBodyFat is the CUN-BAE equation. It needs no circumferences.
func CunBaeBodyFat(weightKg float64, p Profile) *float64 {
	b, ok := bmi(weightKg, p.HeightCm)
	if !ok {
		return nil
	}
	var s float64
	if p.Sex == Female {
		s = 1
	}
	age := float64(p.Age)
	v := -44.988 +
		0.503*age +
		10.689*s +
		3.172*b -
		0.026*b*b +
		0.181*b*s -
		0.02*b*age -
		0.005*b*b*s +
		0.00021*b*b*age
	return bodyFat(v)
}

// RFMBodyFat is Relative Fat Mass. Height/waist is a ratio, so units cancel.
func RFMBodyFat(p Profile, m Measurements) *float64 {
	waist, ok := m.get("waist")
	if !ok || p.HeightCm <= 0 {
		return nil
	}
	c := 76.0
	if p.Sex == Male {
		c = 64
	}
	return bodyFat(c - 20*p.HeightCm/waist)
}

// MultiGirthBodyFat combines BMI with waist, chest and hips in inches.
func MultiGirthBodyFat(weightKg float64, p Profile, m Measurements) *float64 {
	b, ok := bmi(weightKg, p.HeightCm)
	if !ok {
		return nil
	}
	waist, okW := m.get("waist")
	chest, okC := m.get("chest")
	hips, okH := m.get("hips")
	if !okW || !okC || !okH {
		return nil
	}
	w, c, h := inches(waist), inches(chest), inches(hips)
	var v float64
	if p.Sex == Male {
		v = 0.5*b + 0.4*w + 0.2*h - 0.3*c - 15
	} else {
		v = 0.5*b + 0.3*w + 0.4*h - 0.2*c - 10
	}
	return bodyFat(v)
}

// FFMI is the height-normalized fat-free mass index.
func FFMI(weightKg, heightCm float64, bodyFatPct *float64) *float64 {
	if bodyFatPct == nil || heightCm <= 0 || weightKg <= 0 {
		return nil
	}
	hm := heightCm / 100
	lean := weightKg * (1 - *bodyFatPct/100)
	v := lean/(hm*hm) + 6.1*(1.8-hm)
	if !finite(v) {
		return nil
	}
	v = round(v, 1)
	return &v
}
