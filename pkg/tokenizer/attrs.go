package tokenizer

import (
	"strings"
	"unicode"

	"github.com/arthur-debert/spanruler/pkg/types"
	"golang.org/x/text/unicode/norm"
)

var numberWords = map[string]bool{
	"zero": true, "one": true, "two": true, "three": true, "four": true,
	"five": true, "six": true, "seven": true, "eight": true, "nine": true,
	"ten": true, "eleven": true, "twelve": true, "thirteen": true,
	"fourteen": true, "fifteen": true, "sixteen": true, "seventeen": true,
	"eighteen": true, "nineteen": true, "twenty": true, "thirty": true,
	"forty": true, "fifty": true, "sixty": true, "seventy": true,
	"eighty": true, "ninety": true, "hundred": true, "thousand": true,
	"million": true, "billion": true, "trillion": true,
}

// Annotate derives the lexical attributes of tok from its Text.
func Annotate(tok *types.Token) {
	text := tok.Text
	tok.Lower = strings.ToLower(text)
	tok.Norm = Normalize(text)
	tok.Shape = Shape(text)
	tok.IsAlpha = allRunes(text, unicode.IsLetter)
	tok.IsDigit = allRunes(text, unicode.IsDigit)
	tok.IsPunct = allRunes(text, unicode.IsPunct)
	tok.IsSpace = allRunes(text, unicode.IsSpace)
	tok.IsUpper = hasCased(text) && !strings.ContainsFunc(text, unicode.IsLower)
	tok.IsLower = hasCased(text) && !strings.ContainsFunc(text, unicode.IsUpper)
	tok.IsTitle = isTitle(text)
	tok.LikeNum = LikeNum(text)
}

// Normalize returns the NFKC-normalized lowercase form of text.
func Normalize(text string) string {
	return strings.ToLower(norm.NFKC.String(text))
}

// Shape maps letters to X/x, digits to d and keeps other characters,
// collapsing runs of the same shape character after four.
func Shape(text string) string {
	var b strings.Builder
	var last rune
	run := 0
	for _, r := range text {
		var c rune
		switch {
		case unicode.IsUpper(r):
			c = 'X'
		case unicode.IsLetter(r):
			c = 'x'
		case unicode.IsDigit(r):
			c = 'd'
		default:
			c = r
		}
		if c == last {
			run++
		} else {
			last, run = c, 1
		}
		if run <= 4 {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// LikeNum reports whether text looks like a number: digits with
// thousands/decimal separators, a simple fraction or a number word.
func LikeNum(text string) bool {
	t := strings.TrimLeft(text, "+-~±")
	if t == "" {
		return false
	}
	t = strings.NewReplacer(",", "", ".", "").Replace(t)
	if t != "" && allRunes(t, unicode.IsDigit) {
		return true
	}
	if num, den, ok := strings.Cut(t, "/"); ok {
		return num != "" && den != "" && allRunes(num, unicode.IsDigit) && allRunes(den, unicode.IsDigit)
	}
	return numberWords[strings.ToLower(t)]
}

func allRunes(s string, pred func(rune) bool) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !pred(r) {
			return false
		}
	}
	return true
}

func hasCased(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool {
		return unicode.IsUpper(r) || unicode.IsLower(r)
	})
}

func isTitle(s string) bool {
	seenLetter := false
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		if !seenLetter {
			if !unicode.IsUpper(r) {
				return false
			}
			seenLetter = true
			continue
		}
		if unicode.IsUpper(r) {
			return false
		}
	}
	return seenLetter
}
