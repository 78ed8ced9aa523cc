package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "", Sanitize(""))
	assert.Equal(t, "Hold - then burst [ok]", Sanitize("Hold — then burst ✅"))
	assert.Equal(t, "Trigger earlier [warn]. [soccer] [fire] [target] [drill]", Sanitize("Trigger earlier ⚠️. ⚽ 🔥 🎯 💡"))
	assert.Equal(t, "café ? ?", Sanitize("café 日 🔧"))
	assert.Equal(t, "passer?s 2?3", Sanitize("passer’s 2–3"))
}

func TestHardWrap_ShortTokensUntouched(t *testing.T) {
	text := "short words only\nand a second line"
	assert.Equal(t, text, HardWrap(text, WrapWidth))

	exact := strings.Repeat("a", WrapWidth)
	assert.Equal(t, exact, HardWrap(exact, WrapWidth))
}

func TestHardWrap_BreaksLongRuns(t *testing.T) {
	long := strings.Repeat("x", 95)
	got := HardWrap("see "+long+" end", WrapWidth)

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "see "+strings.Repeat("x", 40), lines[0])
	assert.Equal(t, strings.Repeat("x", 40), lines[1])
	assert.Equal(t, strings.Repeat("x", 15)+" end", lines[2])
}

func TestHardWrap_CountsRunesNotBytes(t *testing.T) {
	long := strings.Repeat("é", 50)
	got := HardWrap(long, WrapWidth)
	assert.Equal(t, strings.Repeat("é", 40)+"\n"+strings.Repeat("é", 10), got)
}

func TestHardWrap_NoChunkExceedsWidth(t *testing.T) {
	inputs := []string{
		strings.Repeat("https://example.com/very/long/path/", 30),
		strings.Repeat("a", 1) + " " + strings.Repeat("b", 81) + "\t" + strings.Repeat("c", 400),
		"",
	}
	for _, in := range inputs {
		for _, field := range strings.Fields(HardWrap(in, WrapWidth)) {
			assert.LessOrEqual(t, len([]rune(field)), WrapWidth)
		}
	}
}

func TestSessionPDF(t *testing.T) {
	out, err := SessionPDF("clip.mp4", "Video: clip.mp4 | Role: Striker", "Tempo control was stable ✅. Hold — burst")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestSessionPDF_LongUnbrokenTextAndManyPages(t *testing.T) {
	huge := strings.Repeat("unbroken", 500) + " " + strings.Repeat("line of feedback text ", 2000)
	out, err := SessionPDF(strings.Repeat("v", 300)+".mp4", huge, huge)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 5000)
}
