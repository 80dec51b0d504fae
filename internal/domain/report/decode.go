package report

import (
	"encoding/json"
	"strings"
)

const (
	consultTipAr = "هذه المعلومات تعليمية فقط. يُنصح بمراجعة الطبيب المختص لتفسير دقيق وخطة علاجية."
	consultTipEn = "This information is educational only. Please consult with a healthcare professional for accurate interpretation and treatment plan."
)

// fallbackRiskScore is the neutral score used when the model output
// could not be decoded into a StructuredAnalysis.
const fallbackRiskScore = 50

// RiskLevelForScore maps a 0-100 score to a coarse level.
// Higher scores mean a healthier overall picture.
func RiskLevelForScore(score int) RiskLevel {
	switch {
	case score >= 70:
		return RiskLow
	case score >= 40:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// StripCodeFence removes a markdown code fence wrapping the model output,
// including an optional language tag on the opening fence.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// drop the language tag line ("json", "JSON", ...)
		first := strings.TrimSpace(s[:i])
		if len(first) <= 10 && !strings.ContainsAny(first, "{}") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Decode parses raw model output into a StructuredAnalysis. The boolean
// reports whether the output was valid structured JSON; when it is not,
// the degraded fallback analysis is returned instead of an error so the
// user flow never breaks on model formatting drift.
func Decode(raw string, lang Language) (StructuredAnalysis, bool) {
	clean := StripCodeFence(raw)

	var a StructuredAnalysis
	dec := json.NewDecoder(strings.NewReader(clean))
	if err := dec.Decode(&a); err != nil {
		return Fallback(raw, lang), false
	}
	if !normalize(&a) {
		return Fallback(raw, lang), false
	}
	return a, true
}

// normalize clamps the score, reconciles the level with the score and
// checks every enum field. It reports false when the object is malformed
// beyond repair (unknown enum values), in which case the caller falls
// back to the degraded analysis.
func normalize(a *StructuredAnalysis) bool {
	if strings.TrimSpace(a.Summary) == "" {
		return false
	}
	if a.RiskScore < 0 {
		a.RiskScore = 0
	}
	if a.RiskScore > 100 {
		a.RiskScore = 100
	}
	// The model supplies riskLevel independently of riskScore; derive the
	// level from the score so the pair can never disagree.
	a.RiskLevel = RiskLevelForScore(a.RiskScore)

	for i := range a.TestResults {
		st := TestStatus(strings.ToLower(string(a.TestResults[i].Status)))
		if st != StatusNormal && st != StatusHigh && st != StatusLow {
			return false
		}
		a.TestResults[i].Status = st
	}
	for i := range a.AbnormalValues {
		sv := Severity(strings.ToLower(string(a.AbnormalValues[i].Severity)))
		if sv != SeverityMild && sv != SeverityModerate && sv != SeveritySevere {
			return false
		}
		a.AbnormalValues[i].Severity = sv
	}

	if a.TestResults == nil {
		a.TestResults = []TestResult{}
	}
	if a.AbnormalValues == nil {
		a.AbnormalValues = []AbnormalValue{}
	}
	if a.Suggestions == nil {
		a.Suggestions = []string{}
	}
	if a.RecommendedTests == nil {
		a.RecommendedTests = []string{}
	}
	return true
}

// Fallback builds the degraded StructuredAnalysis carrying the raw model
// text as summary, a neutral risk, and a single consultation suggestion.
func Fallback(raw string, lang Language) StructuredAnalysis {
	tip := consultTipAr
	if lang == LanguageEnglish {
		tip = consultTipEn
	}
	return StructuredAnalysis{
		Summary:          strings.TrimSpace(raw),
		RiskScore:        fallbackRiskScore,
		RiskLevel:        RiskLevelForScore(fallbackRiskScore),
		TestResults:      []TestResult{},
		AbnormalValues:   []AbnormalValue{},
		Suggestions:      []string{tip},
		RecommendedTests: []string{},
	}
}
