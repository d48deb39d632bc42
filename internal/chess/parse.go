package chess

import (
	"regexp"
	"strings"
)

var moveTokenPattern = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])([a-h][1-8])\s*[-x]?\s*([a-h][1-8])(?:=?([qrbn]))?(?:$|[^a-z0-9])`)

// ExtractMove pulls the first coordinate move token out of free model text.
// It accepts forms like "e2e4", "E2-E4", "e7e8=Q" and tokens inside code fences.
func ExtractMove(text string) (Move, bool) {
	cleaned := stripCodeFences(text)
	if strings.TrimSpace(cleaned) == "" {
		return "", false
	}
	m := moveTokenPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return "", false
	}
	token := strings.ToLower(m[1] + m[2] + m[3])
	mv := Move(token)
	if !mv.Valid() {
		return "", false
	}
	return mv, true
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
