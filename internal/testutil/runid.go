package testutil

// FixedRunIDGenerator generates the same run ID every time.
//
// This keeps log output of an export reproducible in tests. The run ID never
// reaches the exported document, so golden files do not depend on it.
//
// Thread-safety: FixedRunIDGenerator is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a new fixed run ID generator.
//
// If id is empty, Generate() returns "test-run-default".
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run ID.
//
// Implements export.RunIDGenerator.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
