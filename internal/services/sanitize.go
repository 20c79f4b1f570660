package services

import "strings"

// emojiRanges covers the Unicode blocks stripped from model replies before
// they reach the text-to-speech channel: emoticons, pictographs, transport
// symbols, dingbats, flags, and the joiner/variation codepoints that glue
// emoji sequences together.
var emojiRanges = [][2]rune{
	{0x1F300, 0x1F5FF}, // symbols and pictographs
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F680, 0x1F6FF}, // transport and map symbols
	{0x1F900, 0x1F9FF}, // supplemental symbols and pictographs
	{0x1FA70, 0x1FAFF}, // symbols and pictographs extended-A
	{0x1F1E6, 0x1F1FF}, // regional indicators (flags)
	{0x2600, 0x26FF},   // miscellaneous symbols
	{0x2700, 0x27BF},   // dingbats
	{0x2B00, 0x2BFF},   // miscellaneous symbols and arrows
	{0xFE00, 0xFE0F},   // variation selectors
	{0x200D, 0x200D},   // zero-width joiner
}

// StripEmoji removes emoji codepoints and preserves everything else in
// order, including Tamil script.
func StripEmoji(s string) string {
	return strings.Map(func(r rune) rune {
		for _, rng := range emojiRanges {
			if r >= rng[0] && r <= rng[1] {
				return -1
			}
		}
		return r
	}, s)
}
