// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package fgraph

// topoSort orders the live passes in insts with Kahn's algorithm.
//
// Cycle detection runs over the full instance set first: a cycle's members
// all have outgoing edges, so none of them is a sink and the dead-pass
// eliminator drops every one of them before a live-restricted sort could
// notice. The declarations are required to form a DAG whether or not
// anything downstream keeps them alive.
//
// The schedule itself is then Kahn's algorithm restricted to the live
// set, with in-degree counting only live→live edges. The initial queue is
// populated in instance-index order (which is declaration order, since
// instantiate appends instances in the order their PassDecl was expanded)
// and ties are always broken FIFO, so the result is a pure function of
// insts and edges.
func topoSort(insts []passInstance, edges []edge) ([]int, error) {
	all := kahn(len(insts), edges, func(int) bool { return true })
	if len(all) != len(insts) {
		return nil, newf(CycleDetected, "pass dependencies: %d of %d passes ordered", len(all), len(insts))
	}

	liveCount := 0
	for _, inst := range insts {
		if inst.live {
			liveCount++
		}
	}
	sorted := kahn(len(insts), edges, func(i int) bool { return insts[i].live })
	if len(sorted) != liveCount {
		return nil, newf(CycleDetected, "compiled schedule: %d of %d live passes ordered", len(sorted), liveCount)
	}
	return sorted, nil
}

// kahn runs Kahn's algorithm over the sub-graph induced by include,
// returning the nodes it managed to order.
func kahn(n int, edges []edge, include func(int) bool) []int {
	inDegree := make([]int, n)
	adj := make(map[int][]int)
	for _, e := range edges {
		if include(e.from) && include(e.to) {
			inDegree[e.to]++
			adj[e.from] = append(adj[e.from], e.to)
		}
	}

	var queue []int
	for i := 0; i < n; i++ {
		if include(i) && inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	var sorted []int
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		sorted = append(sorted, node)
		for _, succ := range adj[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}
	return sorted
}
