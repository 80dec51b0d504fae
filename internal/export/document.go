package export

import (
	"fmt"

	"github.com/labinsight/labinsight-api/internal/domain/report"
)

// linesPerPage bounds the body of one exported page; the disclaimer
// footer is added on top of that on every page.
const linesPerPage = 40

const (
	disclaimerAr = "هذه المعلومات تعليمية فقط ولا تغني عن استشارة الطبيب المختص."
	disclaimerEn = "This information is educational only and does not replace professional medical consultation."
)

// Page is one page of the exported document
type Page struct {
	Number int      `json:"number"`
	Lines  []string `json:"lines"`
	Footer string   `json:"footer"`
}

// Document renders a structured analysis as a paginated plain-text
// document with the disclaimer footer on every page.
func Document(a report.StructuredAnalysis, lang report.Language) []Page {
	lines := render(a, lang)

	footer := disclaimerEn
	if lang == report.LanguageArabic {
		footer = disclaimerAr
	}

	var pages []Page
	for start := 0; start == 0 || start < len(lines); start += linesPerPage {
		end := start + linesPerPage
		if end > len(lines) {
			end = len(lines)
		}
		pages = append(pages, Page{
			Number: len(pages) + 1,
			Lines:  lines[start:end],
			Footer: footer,
		})
	}
	return pages
}

func render(a report.StructuredAnalysis, lang report.Language) []string {
	ar := lang == report.LanguageArabic
	h := func(arText, enText string) string {
		if ar {
			return arText
		}
		return enText
	}

	out := []string{
		h("تقرير تفسير التحاليل الطبية", "Lab Report Interpretation"),
		"",
		h("الملخص:", "Summary:"),
		a.Summary,
		"",
		fmt.Sprintf("%s %d/100 (%s)", h("مؤشر الخطورة:", "Risk score:"), a.RiskScore, a.RiskLevel),
		"",
	}

	if len(a.TestResults) > 0 {
		out = append(out, h("نتائج التحاليل:", "Test results:"))
		for _, t := range a.TestResults {
			out = append(out,
				fmt.Sprintf("- %s: %s %s (%s) [%s]", t.Name, t.Value, t.Unit, t.NormalRange, t.Status),
				"  "+t.SimpleExplanation,
			)
		}
		out = append(out, "")
	}

	if len(a.AbnormalValues) > 0 {
		out = append(out, h("قيم خارج المعدل الطبيعي:", "Abnormal values:"))
		for _, v := range a.AbnormalValues {
			out = append(out,
				fmt.Sprintf("- %s: %s (%s) [%s]", v.TestName, v.CurrentValue, v.NormalRange, v.Severity),
				"  "+v.Explanation,
			)
		}
		out = append(out, "")
	}

	if len(a.Suggestions) > 0 {
		out = append(out, h("نصائح:", "Suggestions:"))
		for _, s := range a.Suggestions {
			out = append(out, "- "+s)
		}
		out = append(out, "")
	}

	if len(a.RecommendedTests) > 0 {
		out = append(out, h("فحوصات موصى بها:", "Recommended tests:"))
		for _, s := range a.RecommendedTests {
			out = append(out, "- "+s)
		}
		out = append(out, "")
	}

	if a.SpecialistConsultation != nil && *a.SpecialistConsultation != "" {
		out = append(out, h("استشارة مختص:", "Specialist consultation:"), *a.SpecialistConsultation)
	}
	return out
}
