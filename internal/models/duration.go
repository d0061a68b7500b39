package models

import (
	"strconv"
	"strings"
)

// parseAlphaDuration reads "H:MM hr" or "N min".
func parseAlphaDuration(s string) int {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasSuffix(s, "hr"):
		hm := strings.TrimSpace(strings.TrimSuffix(s, "hr"))
		h, m, ok := strings.Cut(hm, ":")
		if !ok {
			return 0
		}
		hours, err1 := strconv.Atoi(h)
		mins, err2 := strconv.Atoi(m)
		if err1 != nil || err2 != nil || hours < 0 || mins < 0 {
			return 0
		}
		return hours*3600 + mins*60
	case strings.HasSuffix(s, "min"):
		mins, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(s, "min")))
		if err != nil || mins < 0 {
			return 0
		}
		return mins * 60
	}
	return 0
}
