package domain

// Chunk is a contiguous span of a source's normalized text. Start and End
// are rune offsets into that text; Index preserves insertion order for
// citation display. Adjacent chunks may overlap.
type Chunk struct {
	Index             int
	Text              string
	Start             int
	End               int
	SourceFingerprint string
}
