package models

import (
	"fmt"
	"regexp"
	"strings"
)

// Email validation regex pattern
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Phone number validation regex (Sri Lankan format: +94 or 0 followed by 9 digits)
var phoneRegex = regexp.MustCompile(`^(\+94|0)\d{9}$`)

// IsValidPhone validates Sri Lankan phone number format
func IsValidPhone(phone string) bool {
	if phone == "" {
		return true // Optional field
	}
	cleaned := strings.ReplaceAll(strings.ReplaceAll(phone, " ", ""), "-", "")
	return phoneRegex.MatchString(cleaned)
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// SanitizeString collapses runs of whitespace and trims the string
func SanitizeString(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fieldName + " is required",
			Value:   value,
		}
	}
	return nil
}

// ValidateStringLength validates string length constraints
func ValidateStringLength(value, fieldName string, minLength, maxLength int) error {
	length := len(strings.TrimSpace(value))

	if minLength > 0 && length < minLength {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be at least %d characters", fieldName, minLength),
			Value:   value,
		}
	}

	if maxLength > 0 && length > maxLength {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s cannot exceed %d characters", fieldName, maxLength),
			Value:   value,
		}
	}

	return nil
}

// ValidateEmail validates email format and returns a validation error if invalid
func ValidateEmail(email, fieldName string) error {
	if email == "" {
		return nil // Optional field
	}

	if !isValidEmail(email) {
		return &ValidationError{
			Field:   fieldName,
			Message: "Invalid email format",
			Value:   email,
		}
	}

	return nil
}
