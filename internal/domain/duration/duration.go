// Package duration parses free-form race times into seconds and formats
// seconds back into fixed-width clock strings.
package duration

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Zero is the sanitized form of an absent or unparseable duration.
const Zero = "00:00:00"

// ZeroMMSS is the MM:SS form of Zero.
const ZeroMMSS = "00:00"

// maxLeadDigits bounds the leading (hours or minutes) field so the total cannot overflow.
const maxLeadDigits = 6

// Parse reads H:M:S, M:S or plain seconds. Every part must be all digits.
func Parse(text string) (int, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, false
	}
	vals := make([]int, len(parts))
	for i, p := range parts {
		if !allDigits(p) || (i == 0 && len(p) > maxLeadDigits) {
			return 0, false
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, false
		}
		vals[i] = v
	}
	switch len(vals) {
	case 3:
		return vals[0]*3600 + vals[1]*60 + vals[2], true
	case 2:
		return vals[0]*60 + vals[1], true
	default:
		return vals[0], true
	}
}

var clockPattern = regexp.MustCompile(`\d+:\d{2}(?::\d{2})?`)

// ParseLenient extracts the first h:mm[:ss] clock found anywhere in text,
// falling back to plain digit seconds. Used by the ingestion profile where
// cells like "3:01:22 (chip)" are common.
func ParseLenient(text string) (int, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}
	if m := clockPattern.FindString(s); m != "" {
		return Parse(m)
	}
	if allDigits(s) {
		return Parse(s)
	}
	return 0, false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func clampRound(seconds float64) int64 {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0
	}
	return int64(math.Round(seconds))
}

// FormatHHMMSS renders seconds as HH:MM:SS rounded to the nearest second.
// Hours grow past two digits without special casing.
func FormatHHMMSS(seconds float64) string {
	s := clampRound(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// FormatMMSS renders seconds as MM:SS, minutes unbounded.
func FormatMMSS(seconds float64) string {
	s := clampRound(seconds)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

// SanitizeMMSS is Sanitize rendered as MM:SS, mapping empty and
// unparseable input to ZeroMMSS.
func SanitizeMMSS(text string) string {
	secs, ok := Parse(text)
	if !ok {
		return ZeroMMSS
	}
	return FormatMMSS(float64(secs))
}

// Sanitize normalizes a duration cell to HH:MM:SS, mapping empty and
// unparseable input to Zero.
func Sanitize(text string) string {
	secs, ok := Parse(text)
	if !ok {
		return Zero
	}
	return FormatHHMMSS(float64(secs))
}

// SanitizeWith is Sanitize with a caller supplied parser.
func SanitizeWith(parse func(string) (int, bool), text string) string {
	secs, ok := parse(text)
	if !ok {
		return Zero
	}
	return FormatHHMMSS(float64(secs))
}

// Seconds parses an already sanitized value, returning 0 when unparseable.
func Seconds(text string) int {
	secs, _ := Parse(text)
	return secs
}

// Positive reports whether text parses to more than zero seconds.
func Positive(text string) bool {
	secs, ok := Parse(text)
	return ok && secs > 0
}
