package ss

import (
	"strings"

	"github.com/distfs/distfs/internal/errs"
)

// isTerminator reports whether r is one of the sentence-ending delimiters.
func isTerminator(r byte) bool {
	return r == '.' || r == '!' || r == '?'
}

// splitSentences splits text into sentences by consuming up to and including
// each terminator, then skipping trailing spaces.
// The terminator is kept as part of the sentence it closes. A trailing
// fragment with no terminator (if any) becomes the final, unterminated
// sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		if isTerminator(text[i]) {
			sentences = append(sentences, text[start:i+1])
			j := i + 1
			for j < len(text) && text[j] == ' ' {
				j++
			}
			start = j
			i = j - 1
		}
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

// endsWithTerminator reports whether sentence ends in one of '.', '!', '?'.
func endsWithTerminator(sentence string) bool {
	s := strings.TrimRight(sentence, " ")
	return s != "" && isTerminator(s[len(s)-1])
}

// payloadLine is one parsed "<word_index> <content>" line from a WRITE
// Phase 2 payload.
type payloadLine struct {
	wordIndex int
	words     []string
}

// parsePayload splits raw Phase 2 data into lines up to (excluding) the
// ETIRW sentinel line, parsing each as "<word_index> <content...>".
func parsePayload(data string) ([]payloadLine, error) {
	var lines []payloadLine
	for _, raw := range strings.Split(data, "\n") {
		line := strings.TrimRight(raw, "\r")
		if line == "" {
			continue
		}
		if line == "ETIRW" {
			break
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			return nil, errs.NewInvalidCommand()
		}
		idx := 0
		for _, c := range parts[0] {
			if c < '0' || c > '9' {
				return nil, errs.NewInvalidCommand()
			}
			idx = idx*10 + int(c-'0')
		}
		lines = append(lines, payloadLine{wordIndex: idx, words: parts[1:]})
	}
	return lines, nil
}

// applyEdit performs one structured edit: split the current
// content into sentences, validate sentence_num, insert each payload line's
// words into the target sentence (finalizing and opening a new sentence
// whenever an inserted word carries a terminator), and reassemble the file.
func applyEdit(filename, content string, sentenceNum int, data string) (string, error) {
	sentences := splitSentences(content)
	n := len(sentences)

	if sentenceNum < 0 || sentenceNum > n {
		return "", errs.NewInvalidIndex(filename, "sentence_num out of range")
	}
	if sentenceNum == n && n > 0 && !endsWithTerminator(sentences[n-1]) {
		return "", errs.NewInvalidIndex(filename, "previous sentence must be complete")
	}

	lines, err := parsePayload(data)
	if err != nil {
		return "", err
	}

	var target []string
	if sentenceNum < n {
		target = strings.Fields(sentences[sentenceNum])
	}

	// tail holds sentences after the one being edited; newly opened
	// sentences get spliced in ahead of it.
	var tail []string
	if sentenceNum < n {
		tail = append(tail, sentences[sentenceNum+1:]...)
	}
	var finished []string // sentences finalized while processing this edit
	current := target

	for _, line := range lines {
		w := line.wordIndex
		if w < 1 || w > len(current)+1 {
			return "", errs.NewInvalidIndex(filename, "word_index out of range")
		}
		for _, word := range line.words {
			if w < 1 || w > len(current)+1 {
				return "", errs.NewInvalidIndex(filename, "word_index out of range")
			}
			insertAt := w - 1
			current = append(current, "")
			copy(current[insertAt+1:], current[insertAt:])
			current[insertAt] = word
			w++

			if strings.ContainsAny(word, ".!?") {
				finished = append(finished, strings.Join(current, " "))
				current = nil
				w = 1
			}
		}
	}

	var rebuilt []string
	rebuilt = append(rebuilt, sentences[:sentenceNum]...)
	rebuilt = append(rebuilt, finished...)
	if len(current) > 0 {
		rebuilt = append(rebuilt, strings.Join(current, " "))
	}
	rebuilt = append(rebuilt, tail...)

	var nonEmpty []string
	for _, s := range rebuilt {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, " "), nil
}
