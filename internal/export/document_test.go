package export

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labinsight/labinsight-api/internal/domain/report"
)

func analysisWithTests(n int) report.StructuredAnalysis {
	a := report.StructuredAnalysis{
		Summary:   "Overall picture is fine.",
		RiskScore: 85,
		RiskLevel: report.RiskLow,
	}
	for i := 0; i < n; i++ {
		a.TestResults = append(a.TestResults, report.TestResult{
			Name:              fmt.Sprintf("Test-%d", i),
			Value:             "1.0",
			Unit:              "u",
			NormalRange:       "0-2",
			Status:            report.StatusNormal,
			SimpleExplanation: "fine",
		})
	}
	return a
}

func TestDocument_SinglePage(t *testing.T) {
	pages := Document(analysisWithTests(2), report.LanguageEnglish)

	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Contains(t, pages[0].Lines, "Lab Report Interpretation")
	assert.Contains(t, pages[0].Lines, "Overall picture is fine.")
	assert.Contains(t, pages[0].Lines, "Risk score: 85/100 (low)")
	assert.Contains(t, pages[0].Footer, "educational only")
}

func TestDocument_DisclaimerOnEveryPage(t *testing.T) {
	// two lines per test result, so 40 results overflow a 40-line page
	pages := Document(analysisWithTests(40), report.LanguageEnglish)

	require.Greater(t, len(pages), 1)
	for i, p := range pages {
		assert.Equal(t, i+1, p.Number)
		assert.Equal(t, disclaimerEn, p.Footer)
		assert.LessOrEqual(t, len(p.Lines), linesPerPage)
	}
}

func TestDocument_PaginationCoversAllLines(t *testing.T) {
	a := analysisWithTests(40)
	pages := Document(a, report.LanguageEnglish)

	var total int
	for _, p := range pages {
		total += len(p.Lines)
	}
	assert.Equal(t, len(render(a, report.LanguageEnglish)), total)

	// the final body line lands on the last page, not dropped
	last := pages[len(pages)-1]
	require.NotEmpty(t, last.Lines)
}

func TestDocument_EmptyAnalysisStillOnePage(t *testing.T) {
	pages := Document(report.StructuredAnalysis{Summary: "s", RiskScore: 50, RiskLevel: report.RiskMedium}, report.LanguageArabic)
	require.Len(t, pages, 1)
	assert.Equal(t, disclaimerAr, pages[0].Footer)
	assert.Contains(t, pages[0].Lines, "تقرير تفسير التحاليل الطبية")
}

func TestDocument_SpecialistConsultationIncluded(t *testing.T) {
	a := analysisWithTests(1)
	c := "See an endocrinologist."
	a.SpecialistConsultation = &c
	pages := Document(a, report.LanguageEnglish)
	assert.Contains(t, pages[0].Lines, "See an endocrinologist.")
}
