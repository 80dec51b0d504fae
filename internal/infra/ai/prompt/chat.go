package prompt

import (
	"strings"

	"github.com/labinsight/labinsight-api/internal/domain/chat"
	"github.com/labinsight/labinsight-api/internal/domain/profile"
	"github.com/labinsight/labinsight-api/internal/domain/report"
)

// ChatSystemPrompt selects the assistant persona by language and the
// user's preferred explanation style, then appends the safety rules.
func ChatSystemPrompt(lang report.Language, style profile.ExplanationStyle) string {
	var base string
	if lang == report.LanguageArabic {
		switch style {
		case profile.StyleMedical:
			base = `أنت مساعد طبي ذكي متخصص في شرح التحاليل الطبية بلغة طبية دقيقة ومهنية.
أجب على أسئلة المرضى باستخدام المصطلحات الطبية الصحيحة مع الحفاظ على الوضوح.`
		case profile.StyleBoth:
			base = `أنت مساعد طبي ذكي. أجب على الأسئلة بطريقتين:
1. تفسير طبي دقيق للأطباء والمختصين
2. تفسير مبسط للمرضى العاديين`
		default:
			base = `أنت مساعد طبي ذكي متخصص في تبسيط المعلومات الطبية للمرضى العاديين.
أجب بلغة بسيطة ومفهومة، تجنب المصطلحات الطبية المعقدة.`
		}
		return base + `

مهم جداً:
- لا تقدم تشخيص طبي مباشر
- أنصح دائماً بمراجعة طبيب مختص
- أجب بإيجاز ووضوح
- إذا لم تكن متأكداً من معلومة، اذكر ذلك`
	}

	switch style {
	case profile.StyleMedical:
		base = `You are a smart medical assistant specialized in explaining medical tests using precise medical terminology.
Answer patient questions using correct medical terms while maintaining clarity.`
	case profile.StyleBoth:
		base = `You are a smart medical assistant. Answer questions in two ways:
1. Precise medical explanation for doctors and specialists
2. Simple explanation for regular patients`
	default:
		base = `You are a smart medical assistant specialized in simplifying medical information for regular patients.
Answer in simple, understandable language, avoiding complex medical terminology.`
	}
	return base + `

Important:
- Do NOT provide direct medical diagnosis
- Always recommend consulting a healthcare professional
- Answer concisely and clearly
- If unsure about information, mention it`
}

// ChatUserPrompt assembles the analysis context, the bounded prior
// conversation (oldest first), and the current question.
func ChatUserPrompt(lang report.Language, analysisContext string, history []chat.Turn, message string) string {
	isArabic := lang == report.LanguageArabic
	var b strings.Builder

	if analysisContext != "" {
		if isArabic {
			b.WriteString("سياق التحليل الطبي للمريض:\n")
		} else {
			b.WriteString("Patient's medical analysis context:\n")
		}
		b.WriteString(analysisContext)
		b.WriteString("\n\n")
	}

	if len(history) > 0 {
		if isArabic {
			b.WriteString("سياق المحادثة السابقة:\n")
		} else {
			b.WriteString("Previous conversation context:\n")
		}
		for _, turn := range history {
			label := speakerLabel(lang, turn.Type)
			b.WriteString(label)
			b.WriteString(": ")
			b.WriteString(turn.Content)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if isArabic {
		b.WriteString("السؤال الحالي: ")
	} else {
		b.WriteString("Current question: ")
	}
	b.WriteString(message)
	return b.String()
}

func speakerLabel(lang report.Language, t chat.MessageType) string {
	if lang == report.LanguageArabic {
		if t == chat.TypeUser {
			return "المريض"
		}
		return "المساعد"
	}
	if t == chat.TypeUser {
		return "Patient"
	}
	return "Assistant"
}
