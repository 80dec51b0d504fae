package report

import (
	"time"
)

// ResultID identifier type
type ResultID string

// Language of the report and of generated text
type Language string

const (
	LanguageArabic  Language = "ar"
	LanguageEnglish Language = "en"
)

// NormalizeLanguage falls back to Arabic, the product default
func NormalizeLanguage(s string) Language {
	if s == string(LanguageEnglish) {
		return LanguageEnglish
	}
	return LanguageArabic
}

// InputType enum
type InputType string

const (
	InputManual InputType = "manual"
	InputFile   InputType = "file"
)

// RiskLevel enum
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// TestStatus enum
type TestStatus string

const (
	StatusNormal TestStatus = "normal"
	StatusHigh   TestStatus = "high"
	StatusLow    TestStatus = "low"
)

// Severity enum
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// TestResult is one detected test. Value, unit and range are free text
// as extracted by the model; numeric use downstream must tolerate that.
type TestResult struct {
	Name               string     `json:"name"`
	Value              string     `json:"value"`
	Unit               string     `json:"unit"`
	NormalRange        string     `json:"normalRange"`
	Status             TestStatus `json:"status"`
	MedicalExplanation string     `json:"medicalExplanation"`
	SimpleExplanation  string     `json:"simpleExplanation"`
}

// AbnormalValue is a flagged out-of-range test with a severity grade
type AbnormalValue struct {
	TestName     string   `json:"testName"`
	CurrentValue string   `json:"currentValue"`
	NormalRange  string   `json:"normalRange"`
	Severity     Severity `json:"severity"`
	Explanation  string   `json:"explanation"`
}

// StructuredAnalysis is the schema-conforming interpretation of a lab report
type StructuredAnalysis struct {
	Summary                string          `json:"summary"`
	RiskScore              int             `json:"riskScore"`
	RiskLevel              RiskLevel       `json:"riskLevel"`
	TestResults            []TestResult    `json:"testResults"`
	AbnormalValues         []AbnormalValue `json:"abnormalValues"`
	Suggestions            []string        `json:"suggestions"`
	RecommendedTests       []string        `json:"recommendedTests"`
	SpecialistConsultation *string         `json:"specialistConsultation"`
}

// Aggregate Root: AnalysisResult, the durable artifact of one analysis
type AnalysisResult struct {
	ID           ResultID            `json:"id"`
	UserID       string              `json:"user_id"`
	InputType    InputType           `json:"input_type"`
	OriginalText string              `json:"original_text"`
	RawOutput    string              `json:"raw_output"`
	Structured   *StructuredAnalysis `json:"structured,omitempty"`
	IsStructured bool                `json:"is_structured"`
	RiskScore    int                 `json:"risk_score"`
	RiskLevel    RiskLevel           `json:"risk_level"`
	UserAge      *int                `json:"user_age,omitempty"`
	UserGender   *string             `json:"user_gender,omitempty"`
	Language     Language            `json:"language"`
	Model        string              `json:"model"`
	CreatedAt    time.Time           `json:"created_at"`
}
