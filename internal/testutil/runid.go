package testutil

// DefaultRunID is the run id used when a script does not pin one.
const DefaultRunID = "test-run-default"

// FixedRunIDGenerator returns the same run id for every play-through.
//
// Unlike engine.FixedGenerator, which hands out ids in sequence, this
// generator never runs out, so a script may restart missions freely and
// still produce a byte-identical transcript.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a generator for id.
// An empty id falls back to DefaultRunID.
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run id.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
