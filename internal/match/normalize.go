package match

import (
	"path/filepath"
	"strings"
	"unicode"
)

// leadingArticles are dropped from the front of a normalized title.
var leadingArticles = []string{"the", "a", "an"}

// NormalizeTitle normalizes a title or file name for fuzzy matching.
// The normalization pipeline:
// 1. Drop a short file extension ("dune.pdf" -> "dune").
// 2. Split on separators and CamelCase boundaries.
// 3. Case-fold to lower and drop punctuation.
// 4. Drop a leading article.
// 5. Join the tokens with single spaces.
func NormalizeTitle(s string) string {
	tokens := TokenizeTitle(s)
	if len(tokens) > 1 {
		for _, article := range leadingArticles {
			if tokens[0] == article {
				tokens = tokens[1:]

				break
			}
		}
	}

	return strings.Join(tokens, " ")
}

// TokenizeTitle splits a title into normalized lowercase tokens.
func TokenizeTitle(s string) []string {
	s = stripExtension(strings.TrimSpace(s))

	var tokens []string

	for _, tok := range tokenizeCamelCase(s) {
		tok = strings.ToLower(stripPunctuation(tok))
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}

	return tokens
}

// stripExtension removes a trailing extension of 1 to 4 alphanumerics.
func stripExtension(s string) string {
	ext := filepath.Ext(s)
	if len(ext) < 2 || len(ext) > 5 || len(ext) == len(s) {
		return s
	}

	for _, r := range ext[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return s
		}
	}

	return strings.TrimSuffix(s, ext)
}

// tokenizeCamelCase splits on separators and CamelCase boundaries.
// Examples:
//   - "TheHobbit" -> ["The", "Hobbit"]
//   - "dune_messiah" -> ["dune", "messiah"]
//   - "HTMLForDummies" -> ["HTML", "For", "Dummies"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i := range runes {
		r := runes[i]

		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i > 0 && shouldStartNewToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// isSeparator returns true if the rune separates words in titles or file names.
func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
}

// shouldStartNewToken determines if a new token should start at position i.
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prevRune := runes[i-1]
	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prevRune)

	// "theHobbit" -> split before 'H'
	if isUpper && unicode.IsLower(prevRune) {
		return true
	}

	// "HTMLFor" -> "HTML" + "For", split before 'F'
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

	return isUpper && isPrevUpper && hasNextLower
}

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}

		return -1
	}, s)
}
