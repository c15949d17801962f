// Package textutil holds small text sanitizers shared by the speech and
// report paths.
package textutil

import "strings"

// StripEmojis removes emoji and related joiner/modifier runes. Assistant
// replies use emojis for engagement, but they must not reach the speech
// synthesizer or the PDF renderer.
func StripEmojis(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isEmojiRune(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF: // pictographs, emoticons, transport, symbols
		return true
	case r >= 0x2600 && r <= 0x26FF: // miscellaneous symbols
		return true
	case r >= 0x2700 && r <= 0x27BF: // dingbats
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators (flags)
		return true
	case r == 0x200D || r == 0xFE0F: // zero-width joiner, variation selector
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tone modifiers
		return true
	case r == 0x2B50 || r == 0x2B55: // star, heavy circle
		return true
	}
	return false
}
