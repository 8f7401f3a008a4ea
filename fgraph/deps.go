// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package fgraph

// edge is a directed dependency from a producer pass index to a consumer
// pass index, both indices into the insts slice built by instantiate.
type edge struct {
	from, to int
}

// buildDeps iterates pass instances in declaration order, tracking the
// last writer of each scoped resource name. Only Current-offset reads
// produce an edge: temporal reads are satisfied by frame separation, not
// an execution dependency.
//
// A read declared before any writer of its resource still depends on that
// resource's (final) writer: declaration order is not execution order,
// and the topological sort is what reorders producer before consumer. A
// pass is never its own producer, so the fallback skips the reading pass
// itself (a read-write attachment loads its own prior contents, not a
// same-frame product).
func buildDeps(insts []passInstance) []edge {
	finalWriter := make(map[string]int, len(insts))
	for i := range insts {
		for _, w := range insts[i].writes {
			if w.offset == Current {
				finalWriter[w.name] = i
			}
		}
	}

	lastWriter := make(map[string]int, len(insts))
	var edges []edge
	seen := make(map[edge]bool)

	for i := range insts {
		for _, r := range insts[i].reads {
			if r.offset != Current {
				continue
			}
			from, ok := lastWriter[r.name]
			if !ok {
				from, ok = finalWriter[r.name]
			}
			if !ok || from == i {
				continue
			}
			e := edge{from: from, to: i}
			if !seen[e] {
				seen[e] = true
				edges = append(edges, e)
			}
		}
		for _, w := range insts[i].writes {
			if w.offset == Current {
				lastWriter[w.name] = i
			}
		}
	}
	return edges
}
