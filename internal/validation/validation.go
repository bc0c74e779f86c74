// Package validation checks request fields before they reach the stores.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"snapgram/internal/models"
)

// Required fails when value is blank.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return models.NewValidationError(fmt.Sprintf("%s is required", field))
	}
	return nil
}

// RequiredFields checks pairs of field name and value in order and returns
// the first failure.
func RequiredFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := Required(pairs[i], pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// Comments fails when any comment is longer than models.MaxCommentLength
// characters.
func Comments(comments []string) error {
	for i, c := range comments {
		if utf8.RuneCountInString(c) > models.MaxCommentLength {
			return models.NewValidationError(fmt.Sprintf(
				"comment %d exceeds %d characters", i+1, models.MaxCommentLength))
		}
	}
	return nil
}

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// Password checks that a password is present and short enough to hash.
func Password(password string) error {
	if err := Required("Password", password); err != nil {
		return err
	}
	if len(password) > MaxPasswordBytes {
		return models.NewValidationError(fmt.Sprintf(
			"Password must not exceed %d bytes", MaxPasswordBytes))
	}
	return nil
}
