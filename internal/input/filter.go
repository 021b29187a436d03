package input

import "strings"

// LettersOnly drops every rune that is not an ASCII letter.
func LettersOnly(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') {
			b.WriteByte(ch)
		}
	}
	return b.String()
}
