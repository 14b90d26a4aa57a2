package chunker

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	DefaultMinTokens = 300
	DefaultMaxTokens = 500
)

// Chunk is one token-bounded segment of a larger text.
type Chunk struct {
	Text       string `json:"chunk_text"`
	Position   int    `json:"chunk_position"`
	TokenCount int    `json:"token_count"`
	SourceType string `json:"source_type"`
}

// Chunker splits text into segments of roughly min..max tokens, preferring
// paragraph boundaries and falling back to sentence splits for oversized
// paragraphs.
type Chunker struct {
	minTokens int
	maxTokens int
	logger    *zap.Logger
}

func New(minTokens, maxTokens int, logger *zap.Logger) *Chunker {
	if minTokens <= 0 {
		minTokens = DefaultMinTokens
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Chunker{minTokens: minTokens, maxTokens: maxTokens, logger: logger}
}

// CountTokens approximates token count as characters over four, which tracks
// common BPE tokenizers closely enough for chunk sizing.
func CountTokens(text string) int {
	return (len(text) + 3) / 4
}

var sentenceBoundaryRe = regexp.MustCompile(`(?:[.!?])\s+`)

// Split chunks text with position and source metadata. Blank text yields no
// chunks.
func (c *Chunker) Split(text, sourceType string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	var (
		chunks    []Chunk
		current   []string
		tokens    int
		position  int
		joinBreak = "\n\n"
	)

	flush := func(sep string) {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Text:       strings.Join(current, sep),
			Position:   position,
			TokenCount: tokens,
			SourceType: sourceType,
		})
		position++
		current = nil
		tokens = 0
	}

	for _, para := range paragraphs {
		paraTokens := CountTokens(para)

		switch {
		case paraTokens > c.maxTokens:
			flush(joinBreak)
			for _, sentence := range splitSentences(para) {
				sentTokens := CountTokens(sentence)
				if tokens+sentTokens > c.maxTokens && len(current) > 0 {
					flush(" ")
				}
				current = append(current, sentence)
				tokens += sentTokens
			}
			flush(" ")
		case tokens+paraTokens > c.maxTokens && tokens >= c.minTokens:
			flush(joinBreak)
			current = append(current, para)
			tokens = paraTokens
		default:
			current = append(current, para)
			tokens += paraTokens
		}
	}
	flush(joinBreak)

	c.logger.Info("chunked content",
		zap.String("source_type", sourceType),
		zap.Int("chunks", len(chunks)))
	return chunks
}

func splitSentences(text string) []string {
	locs := sentenceBoundaryRe.FindAllStringIndex(text, -1)
	var sentences []string
	start := 0
	for _, loc := range locs {
		// loc[0]+1 keeps the terminator with its sentence.
		s := strings.TrimSpace(text[start : loc[0]+1])
		if s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
