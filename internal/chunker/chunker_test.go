package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSplitEmpty(t *testing.T) {
	c := New(300, 500, zap.NewNop())
	assert.Empty(t, c.Split("", "generated"))
	assert.Empty(t, c.Split("  \n\n ", "generated"))
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	c := New(300, 500, zap.NewNop())

	chunks := c.Split("First paragraph.\n\nSecond paragraph.", "prompt")
	require.Len(t, chunks, 1)
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Position)
	assert.Equal(t, "prompt", chunks[0].SourceType)
	assert.Positive(t, chunks[0].TokenCount)
}

func TestSplitParagraphBoundaries(t *testing.T) {
	c := New(10, 20, zap.NewNop())

	para := strings.Repeat("word ", 12) // ~15 tokens each
	chunks := c.Split(para+"\n\n"+para+"\n\n"+para, "generated")
	require.Greater(t, len(chunks), 1)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Position)
		assert.Equal(t, "generated", ch.SourceType)
	}
}

func TestSplitOversizedParagraphBySentences(t *testing.T) {
	c := New(10, 20, zap.NewNop())

	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString("This sentence carries a fair number of words to count. ")
	}

	chunks := c.Split(b.String(), "uploaded_file")
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		assert.NotContains(t, ch.Text, "\n\n")
		assert.True(t, strings.HasSuffix(ch.Text, "."))
	}
}

func TestSplitDeterministic(t *testing.T) {
	c := New(10, 20, zap.NewNop())
	text := strings.Repeat("Alpha beta gamma delta. ", 20)

	first := c.Split(text, "generated")
	assert.Equal(t, first, c.Split(text, "generated"))
}

func TestCountTokens(t *testing.T) {
	assert.Equal(t, 0, CountTokens(""))
	assert.Equal(t, 1, CountTokens("abc"))
	assert.Equal(t, 1, CountTokens("abcd"))
	assert.Equal(t, 2, CountTokens("abcde"))
}

func TestSplitSentencesKeepsTerminators(t *testing.T) {
	got := splitSentences("One. Two! Three? Four")
	assert.Equal(t, []string{"One.", "Two!", "Three?", "Four"}, got)
}
