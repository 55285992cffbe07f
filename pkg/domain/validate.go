package domain

import "strings"

// ValidateMeaning requires a translation, a part of speech and a base form.
func ValidateMeaning(m Meaning) error {
	var missing []string
	if strings.TrimSpace(m.Translation) == "" {
		missing = append(missing, "translation")
	}
	if strings.TrimSpace(m.PartOfSpeech) == "" {
		missing = append(missing, "partOfSpeech")
	}
	if strings.TrimSpace(m.BaseForm) == "" {
		missing = append(missing, "baseForm")
	}
	if len(missing) > 0 {
		return &MalformedEntryError{Source: m.SourceID, Missing: missing}
	}
	return nil
}
