package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_WindowAndStep(t *testing.T) {
	text := strings.Repeat("a", 3000)
	cfg := ChunkConfig{MaxChars: 500, Overlap: 50}

	chunks := SplitText(text, "fp", cfg)

	require.Len(t, chunks, 7)
	wantStarts := []int{0, 450, 900, 1350, 1800, 2250, 2700}
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, wantStarts[i], chunk.Start)
		assert.Equal(t, "fp", chunk.SourceFingerprint)
		assert.LessOrEqual(t, len([]rune(chunk.Text)), cfg.MaxChars)
	}
	assert.Equal(t, 3000, chunks[len(chunks)-1].End)
}

func TestSplitText_FullCoverageAndReconstruction(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 700; i++ {
		b.WriteString("word")
		b.WriteByte(byte('a' + i%26))
		b.WriteByte(' ')
	}
	text := b.String()
	cfg := ChunkConfig{MaxChars: 300, Overlap: 60}

	chunks := SplitText(text, "fp", cfg)
	require.NotEmpty(t, chunks)

	// Consecutive windows overlap by exactly cfg.Overlap runes, so dropping
	// the overlap prefix of every later chunk reassembles the input.
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0].Text)
	for _, chunk := range chunks[1:] {
		runes := []rune(chunk.Text)
		require.Greater(t, len(runes), cfg.Overlap)
		rebuilt.WriteString(string(runes[cfg.Overlap:]))
	}
	assert.Equal(t, text, rebuilt.String())

	// Offsets are contiguous under the sliding window.
	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, chunks[i-1].Start+cfg.MaxChars-cfg.Overlap, chunks[i].Start)
	}
}

func TestSplitText_ShortTextSingleChunk(t *testing.T) {
	chunks := SplitText("tiny input", "fp", ChunkConfig{MaxChars: 500, Overlap: 50})

	require.Len(t, chunks, 1)
	assert.Equal(t, "tiny input", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 10, chunks[0].End)
}

func TestSplitText_EmptyText(t *testing.T) {
	assert.Nil(t, SplitText("", "fp", DefaultChunkConfig()))
}

func TestSplitText_Deterministic(t *testing.T) {
	text := strings.Repeat("deterministic ", 200)
	cfg := ChunkConfig{MaxChars: 128, Overlap: 16}

	first := SplitText(text, "fp", cfg)
	second := SplitText(text, "fp", cfg)

	assert.Equal(t, first, second)
}

func TestSplitText_RuneOffsets(t *testing.T) {
	text := strings.Repeat("héllo wörld ", 100)
	cfg := ChunkConfig{MaxChars: 50, Overlap: 10}

	chunks := SplitText(text, "fp", cfg)
	runes := []rune(text)

	for _, chunk := range chunks {
		assert.Equal(t, string(runes[chunk.Start:chunk.End]), chunk.Text)
	}
}

func TestSplitText_InvalidConfigFallsBack(t *testing.T) {
	chunks := SplitText("some text", "fp", ChunkConfig{MaxChars: 0, Overlap: -5})

	require.Len(t, chunks, 1)
	assert.Equal(t, "some text", chunks[0].Text)
}
