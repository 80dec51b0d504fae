package profile

import (
	"time"

	"github.com/labinsight/labinsight-api/internal/domain/report"
)

// ExplanationStyle selects lay-accessible vs clinically precise wording
type ExplanationStyle string

const (
	StyleSimple  ExplanationStyle = "simple"
	StyleMedical ExplanationStyle = "medical"
	StyleBoth    ExplanationStyle = "both"
)

// NormalizeStyle defaults to simple wording
func NormalizeStyle(s string) ExplanationStyle {
	switch ExplanationStyle(s) {
	case StyleMedical:
		return StyleMedical
	case StyleBoth:
		return StyleBoth
	default:
		return StyleSimple
	}
}

const DefaultAutoDeleteDays = 30

// Profile holds a user's preferences: wording style, language, and the
// privacy/retention settings surface. The retention sweep only applies
// to users with PrivacyMode on and a positive AutoDeleteDays; 0 turns
// auto-deletion off.
type Profile struct {
	UserID            string           `json:"user_id"`
	PreferredLanguage report.Language  `json:"preferred_language"`
	ExplanationStyle  ExplanationStyle `json:"preferred_explanation_style"`
	PrivacyMode       bool             `json:"privacy_mode"`
	AutoDeleteDays    int              `json:"auto_delete_days"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Default returns the profile used when a user has never saved settings
func Default(userID string) *Profile {
	return &Profile{
		UserID:            userID,
		PreferredLanguage: report.LanguageArabic,
		ExplanationStyle:  StyleSimple,
		AutoDeleteDays:    DefaultAutoDeleteDays,
	}
}
