package parser

import (
	"math"
	"regexp"
	"unicode"
)

var latinWord = regexp.MustCompile(`[A-Za-z0-9]+(?:['’-][A-Za-z0-9]+)*`)

// CountWords counts Latin words plus CJK characters, where cjkPerWord CJK
// characters count as one word.
func CountWords(s string, cjkPerWord float64) int {
	if cjkPerWord <= 0 {
		cjkPerWord = 2.5
	}
	words := len(latinWord.FindAllStringIndex(s, -1))
	cjk := 0
	for _, r := range s {
		if isCJK(r) {
			cjk++
		}
	}
	return words + int(math.Ceil(float64(cjk)/cjkPerWord))
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana)
}
