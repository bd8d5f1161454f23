package views

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// sanitizeForTerminal drops codepoints that tcell cannot lay out reliably and
// control characters that would move the cursor. Newlines are kept unless
// singleLine is set, in which case they become spaces.
func sanitizeForTerminal(s string, singleLine bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case r == utf8.RuneError && size == 1:
			continue
		case r == '\n':
			if singleLine {
				b.WriteByte(' ')
			} else {
				b.WriteByte('\n')
			}
		case r == '\t':
			b.WriteByte(' ')
		case unicode.IsControl(r), isJoinerOrModifier(r):
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isJoinerOrModifier matches skin tone modifiers, the zero width joiner and
// variation selectors. Without them a multi-codepoint emoji renders as its
// base character, which tcell measures correctly.
func isJoinerOrModifier(r rune) bool {
	switch {
	case r >= 0x1F3FB && r <= 0x1F3FF:
		return true
	case r == 0x200D:
		return true
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	case r >= 0xE0100 && r <= 0xE01EF:
		return true
	default:
		return false
	}
}
