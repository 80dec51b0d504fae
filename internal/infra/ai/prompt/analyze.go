package prompt

import (
	"fmt"

	"github.com/labinsight/labinsight-api/internal/domain/report"
)

// Output budgets per request kind
const (
	AnalyzeMaxTokens = 2048
	ChatMaxTokens    = 1024
)

// AnalyzeSystemPrompt provides the language-specific instructions, the
// patient metadata, and the strict JSON schema for the analysis output.
func AnalyzeSystemPrompt(lang report.Language, age *int, gender *string) string {
	if lang == report.LanguageArabic {
		return arabicAnalyzeHeader(age, gender) + "\n\n" + schemaBlock
	}
	return englishAnalyzeHeader(age, gender) + "\n\n" + schemaBlock
}

// AnalyzeUserPrompt labels the lab results text for the model
func AnalyzeUserPrompt(lang report.Language, reportText string) string {
	if lang == report.LanguageArabic {
		return "نتائج التحاليل:\n" + reportText
	}
	return "Lab Results:\n" + reportText
}

func englishAnalyzeHeader(age *int, gender *string) string {
	return fmt.Sprintf(`You are a medical expert specializing in interpreting lab results. Analyze the following medical tests and produce a structured interpretation in English.

Patient information: Age %s, Gender: %s

Important:
- Do NOT provide medical diagnosis
- Use simple, understandable language in simpleExplanation fields
- End the summary with: "This information is educational only. Please consult with a healthcare professional for accurate interpretation and treatment plan."`,
		orNotSpecifiedInt(age, "not specified"),
		orNotSpecified(gender, "not specified"))
}

func arabicAnalyzeHeader(age *int, gender *string) string {
	g := "غير محدد"
	if gender != nil {
		switch *gender {
		case "male":
			g = "ذكر"
		case "female":
			g = "أنثى"
		}
	}
	return fmt.Sprintf(`أنت طبيب مختص في تفسير التحاليل الطبية. قم بتحليل التحاليل التالية وقدم تفسيرًا مبسطًا وواضحًا باللغة العربية.

معلومات المريض: العمر %s, الجنس: %s

مهم جداً:
- لا تقدم أي تشخيص طبي
- أضف في نهاية الملخص: "هذه المعلومات تعليمية فقط. يُنصح بمراجعة الطبيب المختص لتفسير دقيق وخطة علاجية."
- استخدم لغة بسيطة ومفهومة`,
		orNotSpecifiedInt(age, "غير محدد"), g)
}

// schemaBlock mirrors the StructuredAnalysis shape exactly; the decoder
// rejects anything that strays from it.
const schemaBlock = `You must produce one valid JSON object only (no markdown, no commentary, no code fences) that follows the schema below.

Requirements:
- Output must be a single JSON object.
- riskScore is an integer from 0 (worst) to 100 (best overall picture).
- riskLevel is one of: low, medium, high. status is one of: normal, high, low. severity is one of: mild, moderate, severe.
- abnormalValues lists only tests outside their normal range.
- specialistConsultation is null when no referral is needed.

Schema (example with empty values):
{
  "summary": "<string>",
  "riskScore": 0,
  "riskLevel": "<low|medium|high>",
  "testResults": [
    {
      "name": "<string>",
      "value": "<string>",
      "unit": "<string>",
      "normalRange": "<string>",
      "status": "<normal|high|low>",
      "medicalExplanation": "<string>",
      "simpleExplanation": "<string>"
    }
  ],
  "abnormalValues": [
    {
      "testName": "<string>",
      "currentValue": "<string>",
      "normalRange": "<string>",
      "severity": "<mild|moderate|severe>",
      "explanation": "<string>"
    }
  ],
  "suggestions": ["<string>"],
  "recommendedTests": ["<string>"],
  "specialistConsultation": null
}`

func orNotSpecified(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func orNotSpecifiedInt(i *int, fallback string) string {
	if i == nil {
		return fallback
	}
	return fmt.Sprintf("%d", *i)
}
