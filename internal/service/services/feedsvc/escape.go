package feedsvc

// escapedWidth is the number of characters a rune occupies in XML character
// data after encoding/xml escaping.
func escapedWidth(r rune) int {
	switch r {
	case '<', '>':
		return 4 // &lt; &gt;
	case '&', '\'', '"':
		return 5 // &amp; &#39; &#34;
	case '\t', '\n', '\r':
		return 5 // &#x9; &#xA; &#xD;
	default:
		return 1
	}
}

// truncateEscaped cuts s so its escaped XML rendering never exceeds limit
// characters. Counting runes keeps multi-byte text intact, and budgeting by
// escaped width keeps entities whole.
func truncateEscaped(s string, limit int) string {
	width := 0
	for i, r := range s {
		w := escapedWidth(r)
		if width+w > limit {
			return s[:i]
		}
		width += w
	}
	return s
}
