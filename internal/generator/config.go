package generator

// Config drives the synthetic graph generator.
type Config struct {
	NumPersons       int
	NumSoftware      int
	KnowsPerPerson   int
	CreatedPerPerson int
	// MinWeight and MaxWeight bound the uniform edge weight.
	MinWeight float64
	MaxWeight float64
	// UnweightedChance is the probability an edge carries no weight property,
	// leaving it to the step's default weight.
	UnweightedChance float64
	Seed             int64
}

// DefaultConfig returns settings that produce a graph dense enough for
// three-hop traversals.
func DefaultConfig() Config {
	return Config{
		NumPersons:       1000,
		NumSoftware:      200,
		KnowsPerPerson:   5,
		CreatedPerPerson: 2,
		MinWeight:        0.1,
		MaxWeight:        10,
		UnweightedChance: 0.1,
		Seed:             42,
	}
}
