package shell

// cuts text into consecutive slices of at most size characters. the cut
// may fall mid-word; empty text yields no slices.
func SplitMessage(text string, size int) []string {
	if size <= 0 {
		size = DefaultMaxMessageLength
	}

	runes := []rune(text)
	parts := make([]string, 0, (len(runes)+size-1)/size)

	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		parts = append(parts, string(runes[start:end]))
	}

	return parts
}
