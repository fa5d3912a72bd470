package bias

import (
	"fmt"
	"strings"
)

// Detection is the learner's answer to "is there bias in this scenario?".
type Detection string

const (
	DetectYes      Detection = "yes"
	DetectPossibly Detection = "possibly"
	DetectNo       Detection = "no"
	DetectUnsure   Detection = "unsure"
)

// AllDetections returns the four fixed answers in display order.
func AllDetections() []Detection {
	return []Detection{DetectYes, DetectPossibly, DetectNo, DetectUnsure}
}

// Label returns the learner-facing label.
func (d Detection) Label() string {
	switch d {
	case DetectYes:
		return "Sim, há viés evidente"
	case DetectPossibly:
		return "Possivelmente há viés"
	case DetectNo:
		return "Não há viés"
	case DetectUnsure:
		return "Não tenho certeza"
	default:
		return string(d)
	}
}

// IndicatesBias reports whether the answer acknowledges bias.
func (d Detection) IndicatesBias() bool {
	return d == DetectYes || d == DetectPossibly
}

// ParseDetection resolves an id or a label (case-insensitive).
func ParseDetection(s string) (Detection, error) {
	s = strings.TrimSpace(s)
	for _, d := range AllDetections() {
		if strings.EqualFold(s, string(d)) || strings.EqualFold(s, d.Label()) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown detection answer %q", s)
}

// UnmarshalText accepts the id or the label; unknown values are kept verbatim
// and simply score as "no bias detected".
func (d *Detection) UnmarshalText(b []byte) error {
	if parsed, err := ParseDetection(string(b)); err == nil {
		*d = parsed
		return nil
	}
	*d = Detection(strings.TrimSpace(string(b)))
	return nil
}
