package blogtests

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type WordCount struct {
	Word  string
	Count int
}

// TopWords counts the words of all texts, splitting on single spaces only, and returns the n
// most frequent. Words with equal counts keep the order in which they first appeared.
func TopWords(texts []string, n int) []WordCount {
	var counts []WordCount
	positions := make(map[string]int)
	for _, text := range texts {
		for _, word := range strings.Split(text, " ") {
			if i, ok := positions[word]; ok {
				counts[i].Count++
				continue
			}
			positions[word] = len(counts)
			counts = append(counts, WordCount{Word: word, Count: 1})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if n < 0 {
		n = 0
	}
	if n < len(counts) {
		counts = counts[:n]
	}
	return counts
}

// FormatTopWords renders one "word: count" line per entry.
func FormatTopWords(words []WordCount) string {
	var b strings.Builder
	for _, w := range words {
		fmt.Fprintf(&b, "%s: %d\n", w.Word, w.Count)
	}
	return b.String()
}

// WriteTopWords writes top_words_<browser>.txt into dir and returns its path.
func WriteTopWords(dir, browserName string, words []WordCount) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("top_words_%s.txt", browserName))
	if err := os.WriteFile(path, []byte(FormatTopWords(words)), 0o644); err != nil {
		return "", fmt.Errorf("writing top words: %w", err)
	}
	return path, nil
}
