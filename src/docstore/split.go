package docstore

import "strings"

// SplitWords splits text into word-based chunks of chunkSize words with
// chunkOverlap words shared between neighboring chunks. The final chunk may
// be shorter; empty input yields no chunks.
func SplitWords(text string, chunkSize, chunkOverlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 || chunkSize <= 0 {
		return nil
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize - 1
	}

	var chunks []string
	start := 0
	total := len(words)
	for start < total {
		end := start + chunkSize
		if end > total {
			end = total
		}
		chunk := strings.TrimSpace(strings.Join(words[start:end], " "))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == total {
			break
		}
		start = end - chunkOverlap
		if start < 0 {
			start = 0
		}
	}
	return chunks
}
