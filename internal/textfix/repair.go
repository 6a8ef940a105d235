// Package textfix repairs text fields that were exported as UTF-8 bytes but re-read as Latin-1.
package textfix

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

type substitution struct {
	broken  string
	correct string
}

// turkishSubstitutions lists mojibake sequences in the order they are replaced. Several of the
// broken forms contain Windows-1252 punctuation, which the Latin-1 round trip cannot reverse.
var turkishSubstitutions = []substitution{
	{broken: "Ã¼", correct: "ü"},
	{broken: "Ã¶", correct: "ö"},
	{broken: "Ã§", correct: "ç"},
	{broken: "ÅŸ", correct: "ş"},
	{broken: "Ä±", correct: "ı"},
	{broken: "ÄŸ", correct: "ğ"},
	{broken: "Ãœ", correct: "Ü"},
	{broken: "Ã–", correct: "Ö"},
	{broken: "Ã‡", correct: "Ç"},
	{broken: "Åž", correct: "Ş"},
	{broken: "Ä°", correct: "İ"},
	{broken: "Äž", correct: "Ğ"},
	{broken: "Å\u009f", correct: "ş"},
	{broken: "Ä\u009f", correct: "ğ"},
}

// Repair returns text with Turkish mojibake replaced and, when the whole string is a Latin-1
// reading of valid UTF-8, decoded back to UTF-8. Already correct text is returned unchanged and
// Repair(Repair(s)) == Repair(s) for every s.
func Repair(text string) string {
	if text == "" {
		return text
	}
	repaired := text
	// Every successful step shortens the rune count, so the loop always reaches a fixed point.
	for {
		next := reinterpretLatin1(applySubstitutions(repaired))
		if next == repaired {
			return repaired
		}
		repaired = next
	}
}

func applySubstitutions(text string) string {
	for _, entry := range turkishSubstitutions {
		if strings.Contains(text, entry.broken) {
			text = strings.ReplaceAll(text, entry.broken, entry.correct)
		}
	}
	return text
}

// reinterpretLatin1 treats every rune as a Latin-1 byte and keeps the result only when those
// bytes form valid UTF-8. Text containing runes above U+00FF cannot be encoded and is kept.
func reinterpretLatin1(text string) string {
	latin1Bytes, err := charmap.ISO8859_1.NewEncoder().String(text)
	if err != nil {
		return text
	}
	if !utf8.ValidString(latin1Bytes) {
		return text
	}
	return latin1Bytes
}
