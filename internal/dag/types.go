package dag

// Graph holds descriptor nodes and the edges between them. Node IDs are
// cross-reference strings such as "type[3]". A Graph is built and read by
// one compiler and is not safe for concurrent use.
type Graph struct {
	nodes map[string]*node
	// order keeps insertion order so results are deterministic.
	order []string
}

// node is one descriptor. deps are the descriptors it needs built first,
// dependents the ones that need it.
type node struct {
	id         string
	deps       map[string]*node
	dependents map[string]*node
}
