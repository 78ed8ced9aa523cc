// Package export renders session feedback as a PDF using the core PDF fonts,
// which only cover Latin-1. Text is sanitised and long tokens are broken
// before layout.
package export

import (
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
)

// WrapWidth is the longest run of non-whitespace characters left intact.
const WrapWidth = 40

var emojiReplacer = strings.NewReplacer(
	"—", "-",
	"⚠️", "[warn]",
	"⚽", "[soccer]",
	"✅", "[ok]",
	"⚠", "[warn]",
	"🔥", "[fire]",
	"🎯", "[target]",
	"💡", "[drill]",
)

// Sanitize replaces the em dash and known emoji with ASCII and every other
// character outside Latin-1 with '?'.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	text = emojiReplacer.Replace(text)
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if _, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}

// HardWrap breaks every run of width or more non-whitespace characters into
// chunks of width characters separated by newlines. Runs shorter than width
// are untouched. A non-positive width leaves text as is.
func HardWrap(text string, width int) string {
	if text == "" || width <= 0 {
		return text
	}
	var (
		b   strings.Builder
		run []rune
	)
	flush := func() {
		for len(run) > width {
			b.WriteString(string(run[:width]))
			b.WriteByte('\n')
			run = run[width:]
		}
		b.WriteString(string(run))
		run = run[:0]
	}
	for _, r := range text {
		if unicode.IsSpace(r) {
			flush()
			b.WriteRune(r)
			continue
		}
		run = append(run, r)
	}
	flush()
	return b.String()
}

// SafeBlock prepares text for the PDF: Sanitize then HardWrap at WrapWidth.
func SafeBlock(text string) string {
	return HardWrap(Sanitize(text), WrapWidth)
}
