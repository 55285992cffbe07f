package suggest

import "unicode"

// CapitalPositions records which runes of the user's prefix are upper case.
func CapitalPositions(prefix string) []bool {
	runes := []rune(prefix)
	positions := make([]bool, len(runes))
	found := false
	for i, r := range runes {
		if unicode.IsUpper(r) {
			positions[i] = true
			found = true
		}
	}
	if !found {
		return nil
	}
	return positions
}

func ApplyCapitalization(word string, capitalPositions []bool) string {
	if len(capitalPositions) == 0 {
		return word
	}

	wordRunes := []rune(word)
	for i := 0; i < len(wordRunes) && i < len(capitalPositions); i++ {
		if capitalPositions[i] {
			wordRunes[i] = unicode.ToUpper(wordRunes[i])
		}
	}
	return string(wordRunes)
}
