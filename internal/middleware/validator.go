package middleware

import (
	"fmt"
	"strings"
)

// Input validation and sanitization utilities

// ValidateLanguage checks the interface language code
func ValidateLanguage(lang string) error {
	if lang == "" {
		return nil // optional, defaults to Arabic
	}
	if lang != "ar" && lang != "en" {
		return fmt.Errorf("invalid language: %s (allowed: ar, en)", lang)
	}
	return nil
}

// ValidateGender checks the optional patient gender field
func ValidateGender(gender string) error {
	if gender == "" {
		return nil // optional field
	}
	g := strings.ToLower(gender)
	if g != "male" && g != "female" {
		return fmt.Errorf("invalid gender: %s (allowed: male, female)", gender)
	}
	return nil
}

// ValidateAge bounds the optional patient age
func ValidateAge(age *int) error {
	if age == nil {
		return nil
	}
	if *age < 0 || *age > 130 {
		return fmt.Errorf("invalid age: %d", *age)
	}
	return nil
}

// ValidateInputType checks manual vs file submission
func ValidateInputType(inputType string) error {
	if inputType == "" {
		return nil // defaults to manual
	}
	if inputType != "manual" && inputType != "file" {
		return fmt.Errorf("invalid input type: %s (allowed: manual, file)", inputType)
	}
	return nil
}

// ValidateExplanationStyle checks the profile wording preference
func ValidateExplanationStyle(style string) error {
	if style == "" {
		return nil
	}
	if style != "simple" && style != "medical" && style != "both" {
		return fmt.Errorf("invalid explanation style: %s (allowed: simple, medical, both)", style)
	}
	return nil
}

// ValidateRetentionDays bounds the auto-delete preference
func ValidateRetentionDays(days int) error {
	if days < 0 || days > 365 {
		return fmt.Errorf("invalid retention days: %d (allowed: 0-365)", days)
	}
	return nil
}
