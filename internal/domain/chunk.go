package domain

// Segment is one contiguous span of text produced by a document loader,
// tagged with its origin. PDF loaders emit one segment per page; DOCX
// loaders emit a single segment with Page left at zero.
type Segment struct {
	Text   string
	Source string
	Page   int
}

// Chunk is a bounded passage of document text, the unit that is embedded
// and retrieved. Chunks are ephemeral: the full set is regenerated on every
// index rebuild.
type Chunk struct {
	Source    string
	Page      int
	Index     int
	Content   string
	Embedding []float32
}
