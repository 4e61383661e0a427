package pipeline

import "strings"

type DetectResult struct {
	IsExport bool
	Score    float64
	Reason   string
}

var detectKeywords = []string{"member", "roster", "export", "crm", "badge", "facility", "customer"}

// Source column names whose presence in a table header strongly suggests a
// membership export.
var detectHeaderProbes = []string{"badge", "home facility", "customer id", "last visit", "participant agreement", "belay"}

// DetectMemberExport scores whether an incoming message looks like a
// membership export worth cleaning, from its subject, attachment names, and
// the header row of any extracted table.
func DetectMemberExport(subject string, attachmentNames []string, headers []string) DetectResult {
	subject = strings.ToLower(subject)

	score := 0.0
	for _, kw := range detectKeywords {
		if strings.Contains(subject, kw) {
			score += 0.2
		}
	}

	for _, name := range attachmentNames {
		ln := strings.ToLower(name)
		if strings.HasSuffix(ln, ".csv") || strings.HasSuffix(ln, ".xlsx") || strings.HasSuffix(ln, ".xls") {
			score += 0.25
			break
		}
	}

	headerHits := 0
	for _, h := range headers {
		lh := strings.ToLower(strings.TrimSpace(h))
		for _, probe := range detectHeaderProbes {
			if lh == probe {
				headerHits++
				break
			}
		}
	}
	if headerHits >= 2 {
		score += 0.5
	} else if headerHits == 1 {
		score += 0.25
	}

	if score > 1 {
		score = 1
	}

	isExport := score >= 0.45
	reason := "rules_negative"
	if isExport {
		reason = "rules_positive"
	}
	return DetectResult{IsExport: isExport, Score: score, Reason: reason}
}
