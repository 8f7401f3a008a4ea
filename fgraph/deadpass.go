// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package fgraph

// markLive marks sinks live, then propagates liveness backward through
// read→write chains until it reaches a fixed point. Passes never reached
// are dropped from the schedule; their execute callback is never invoked.
//
// A pass with zero outgoing edges is a sink only when its absence of
// downstream consumers is meaningful, i.e. it writes at least one
// external resource (the host, not the graph, is the real consumer —
// external resources are never read within the same-frame sub-graph, so
// out-degree zero is the correct test for them), or it declares no reads
// and no writes at all (a pure side-effecting pass is always scheduled).
// A pass whose only writes are unconsumed transient resources is
// genuinely dead: nothing, graph or host, will ever observe that write.
func markLive(insts []passInstance, edges []edge, isExternal func(name string) bool) {
	hasOutgoing := make([]bool, len(insts))
	for _, e := range edges {
		hasOutgoing[e.from] = true
	}

	for i := range insts {
		if hasOutgoing[i] {
			continue
		}
		if len(insts[i].reads) == 0 && len(insts[i].writes) == 0 {
			insts[i].live = true
			continue
		}
		for _, w := range insts[i].writes {
			if isExternal(w.name) {
				insts[i].live = true
				break
			}
		}
	}

	// writer index: resource name -> indices of instances that write it
	// at any frame offset, needed to walk a live pass's reads back to
	// their producers regardless of which offset the edge builder used.
	writers := make(map[string][]int)
	for i := range insts {
		for _, w := range insts[i].writes {
			writers[w.name] = append(writers[w.name], i)
		}
	}

	for {
		changed := false
		for i := range insts {
			if !insts[i].live {
				continue
			}
			for _, r := range insts[i].reads {
				for _, wi := range writers[r.name] {
					if !insts[wi].live {
						insts[wi].live = true
						changed = true
					}
				}
			}
		}
		if !changed {
			break
		}
	}
}
