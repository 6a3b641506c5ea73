package chunker

import "strings"

const paragraphSeparator = "\n\n"

// splits text on blank-line boundaries, trimming each paragraph and
// dropping the ones left empty
func SplitParagraphs(text string) []string {
	var paragraphs []string

	for _, p := range strings.Split(text, paragraphSeparator) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		paragraphs = append(paragraphs, p)
	}

	return paragraphs
}
