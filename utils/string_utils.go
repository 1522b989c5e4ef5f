package utils

import (
	"strings"
	"unicode"
)

// Title converts the first letter of each word to uppercase and the rest to lowercase.
// Underscores are treated as word separators.
func Title(s string) string {
	return strings.Join(titleWords(strings.Fields(strings.ReplaceAll(s, "_", " "))), " ")
}

func titleWords(words []string) []string {
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		for j := 1; j < len(runes); j++ {
			runes[j] = unicode.ToLower(runes[j])
		}
		words[i] = string(runes)
	}
	return words
}
