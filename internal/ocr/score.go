package ocr

import (
	"strings"

	"github.com/arbovm/levenshtein"
)

// Accuracy compares recognized text against the expected transcription.
type Accuracy struct {
	// CharDistance is the edit distance between the normalized texts.
	CharDistance int `json:"char_distance"`

	// CER is the character error rate: CharDistance over expected length.
	CER float64 `json:"cer"`

	// WordDistance is the edit distance counted in whole words.
	WordDistance int `json:"word_distance"`

	// WER is the word error rate: WordDistance over expected word count.
	WER float64 `json:"wer"`
}

// Score computes character and word error rates of got against expected.
//
// Both texts are normalized first: runs of whitespace collapse to a single
// space and leading/trailing space is dropped. Case is kept. When expected
// is empty the rates are 0 for an empty result and 1 otherwise.
func Score(expected, got string) Accuracy {
	exp := normalize(expected)
	act := normalize(got)

	var acc Accuracy
	acc.CharDistance = levenshtein.Distance(exp, act)
	acc.CER = rate(acc.CharDistance, len([]rune(exp)))

	expWords := strings.Fields(exp)
	actWords := strings.Fields(act)
	acc.WordDistance = wordDistance(expWords, actWords)
	acc.WER = rate(acc.WordDistance, len(expWords))
	return acc
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func rate(distance, length int) float64 {
	if length == 0 {
		if distance == 0 {
			return 0
		}
		return 1
	}
	return float64(distance) / float64(length)
}

// wordDistance maps each distinct word to a private-use rune so the
// character edit distance counts whole-word edits.
func wordDistance(a, b []string) int {
	codes := make(map[string]rune)
	next := rune(0xE000)
	encode := func(words []string) string {
		var sb strings.Builder
		for _, w := range words {
			r, ok := codes[w]
			if !ok {
				r = next
				codes[w] = r
				next++
			}
			sb.WriteRune(r)
		}
		return sb.String()
	}
	return levenshtein.Distance(encode(a), encode(b))
}
