package clustering

import (
	"math"
	"sort"
)

// HDBSCAN is the hierarchical density backend. It follows the standard
// construction: core distances from the MinSamples-nearest neighbor,
// a minimum spanning tree over mutual-reachability distances, a condensed
// cluster tree at MinClusterSize granularity, and a flat clustering chosen
// by cluster stability ("excess of mass") or by taking the tree leaves.
type HDBSCAN struct {
	cfg Config
}

func (h *HDBSCAN) Name() string { return "hdbscan" }

func (h *HDBSCAN) Fit(vectors [][]float64) ([]int, error) {
	n := len(vectors)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}
	mcs := h.cfg.MinClusterSize
	if mcs < 2 {
		mcs = 2
	}
	if n < 2*mcs {
		// No split can produce two viable clusters; the caller's
		// all-noise fallback applies.
		return labels, nil
	}

	dist := distanceMatrix(vectors)
	core := coreDistances(dist, h.cfg.MinSamples)

	edges := mstEdges(dist, core)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].w != edges[j].w {
			return edges[i].w < edges[j].w
		}
		if edges[i].a != edges[j].a {
			return edges[i].a < edges[j].a
		}
		return edges[i].b < edges[j].b
	})

	nodes := singleLinkage(edges, n)
	tree := condense(nodes, n, mcs)
	selected := tree.selectClusters(h.cfg.SelectionMethod)
	if len(selected) == 0 {
		return labels, nil
	}

	return tree.assignLabels(labels, selected), nil
}

// coreDistances returns, per point, the distance to its minSamples-th
// nearest other point.
func coreDistances(dist [][]float64, minSamples int) []float64 {
	n := len(dist)
	if minSamples < 1 {
		minSamples = 1
	}
	if minSamples > n-1 {
		minSamples = n - 1
	}
	core := make([]float64, n)
	row := make([]float64, 0, n-1)
	for i := 0; i < n; i++ {
		row = row[:0]
		for j := 0; j < n; j++ {
			if j != i {
				row = append(row, dist[i][j])
			}
		}
		sort.Float64s(row)
		core[i] = row[minSamples-1]
	}
	return core
}

type mstEdge struct {
	a, b int
	w    float64
}

// mstEdges builds a minimum spanning tree over the mutual-reachability
// graph with Prim's algorithm. Mutual reachability between two points is
// max(core_a, core_b, d(a,b)).
func mstEdges(dist [][]float64, core []float64) []mstEdge {
	n := len(dist)
	inTree := make([]bool, n)
	bestW := make([]float64, n)
	bestFrom := make([]int, n)
	for i := range bestW {
		bestW[i] = math.Inf(1)
	}

	edges := make([]mstEdge, 0, n-1)
	current := 0
	inTree[0] = true
	for len(edges) < n-1 {
		for j := 0; j < n; j++ {
			if inTree[j] {
				continue
			}
			w := dist[current][j]
			if core[current] > w {
				w = core[current]
			}
			if core[j] > w {
				w = core[j]
			}
			if w < bestW[j] {
				bestW[j] = w
				bestFrom[j] = current
			}
		}

		next := -1
		for j := 0; j < n; j++ {
			if !inTree[j] && (next == -1 || bestW[j] < bestW[next]) {
				next = j
			}
		}
		edges = append(edges, mstEdge{a: bestFrom[next], b: next, w: bestW[next]})
		inTree[next] = true
		current = next
	}
	return edges
}

// linkNode is one merge in the single-linkage dendrogram. Leaves are the
// points 0..n-1; merge k produces node n+k.
type linkNode struct {
	left, right int
	dist        float64
	size        int
}

func singleLinkage(edges []mstEdge, n int) []linkNode {
	parent := make([]int, n)
	compNode := make([]int, n)
	for i := range parent {
		parent[i] = i
		compNode[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	nodes := make([]linkNode, 0, n-1)
	sizeOf := func(node int) int {
		if node < n {
			return 1
		}
		return nodes[node-n].size
	}

	for _, e := range edges {
		ra, rb := find(e.a), find(e.b)
		na, nb := compNode[ra], compNode[rb]
		nodes = append(nodes, linkNode{
			left:  na,
			right: nb,
			dist:  e.w,
			size:  sizeOf(na) + sizeOf(nb),
		})
		parent[ra] = rb
		compNode[rb] = n + len(nodes) - 1
	}
	return nodes
}

// condensedTree is the dendrogram reduced to clusters of at least
// MinClusterSize points. Cluster 0 is the root (all points) and is never
// selectable. Each point records the cluster it last belonged to and the
// density (lambda = 1/distance) at which it left.
type condensedTree struct {
	n            int
	parent       []int
	birth        []float64
	stability    []float64
	children     [][]int
	pointCluster []int
	pointLambda  []float64
}

func condense(nodes []linkNode, n, mcs int) *condensedTree {
	t := &condensedTree{
		n:            n,
		parent:       []int{-1},
		birth:        []float64{0},
		stability:    []float64{0},
		children:     [][]int{nil},
		pointCluster: make([]int, n),
		pointLambda:  make([]float64, n),
	}

	newCluster := func(parent int, birth float64) int {
		id := len(t.parent)
		t.parent = append(t.parent, parent)
		t.birth = append(t.birth, birth)
		t.stability = append(t.stability, 0)
		t.children = append(t.children, nil)
		t.children[parent] = append(t.children[parent], id)
		return id
	}

	var leavesUnder func(node int, out []int) []int
	leavesUnder = func(node int, out []int) []int {
		if node < n {
			return append(out, node)
		}
		out = leavesUnder(nodes[node-n].left, out)
		return leavesUnder(nodes[node-n].right, out)
	}

	fallOut := func(node, cluster int, lambda float64) {
		for _, p := range leavesUnder(node, nil) {
			t.pointCluster[p] = cluster
			t.pointLambda[p] = lambda
			t.stability[cluster] += lambda - t.birth[cluster]
		}
	}

	sizeOf := func(node int) int {
		if node < n {
			return 1
		}
		return nodes[node-n].size
	}

	var walk func(node, cluster int)
	walk = func(node, cluster int) {
		if node < n {
			// Single remaining point: leaves the cluster at infinite
			// density, contributing nothing extra beyond its fall-out.
			t.pointCluster[node] = cluster
			t.pointLambda[node] = lambdaAt(0)
			return
		}
		ln := nodes[node-n]
		lambda := lambdaAt(ln.dist)
		sl, sr := sizeOf(ln.left), sizeOf(ln.right)

		switch {
		case sl >= mcs && sr >= mcs:
			// True split: the current cluster dies, two are born.
			t.stability[cluster] += float64(sl+sr) * (lambda - t.birth[cluster])
			cl := newCluster(cluster, lambda)
			cr := newCluster(cluster, lambda)
			walk(ln.left, cl)
			walk(ln.right, cr)
		case sl < mcs && sr < mcs:
			fallOut(ln.left, cluster, lambda)
			fallOut(ln.right, cluster, lambda)
		case sl < mcs:
			fallOut(ln.left, cluster, lambda)
			walk(ln.right, cluster)
		default:
			fallOut(ln.right, cluster, lambda)
			walk(ln.left, cluster)
		}
	}

	walk(n+len(nodes)-1, 0)
	return t
}

// lambdaAt converts a merge distance to a density level, guarding against
// zero distance between identical points.
func lambdaAt(dist float64) float64 {
	if dist <= 1e-12 {
		return 1e12
	}
	return 1 / dist
}

// selectClusters returns the flat clustering. "eom" keeps every cluster
// more stable than the sum of its descendants; "leaf" keeps the tree
// leaves. The root is never selected, so uniform data yields zero
// clusters rather than one covering everything.
func (t *condensedTree) selectClusters(method string) map[int]bool {
	k := len(t.parent)
	selected := make(map[int]bool)
	if k <= 1 {
		return selected
	}

	if method == "leaf" {
		for c := 1; c < k; c++ {
			if len(t.children[c]) == 0 {
				selected[c] = true
			}
		}
		return selected
	}

	// Excess of mass: children have higher ids than parents, so a
	// descending sweep visits children first.
	subtree := append([]float64(nil), t.stability...)
	for c := k - 1; c >= 1; c-- {
		var childSum float64
		for _, ch := range t.children[c] {
			childSum += subtree[ch]
		}
		if len(t.children[c]) == 0 || t.stability[c] > childSum {
			selected[c] = true
		} else {
			subtree[c] = childSum
		}
	}

	// Drop any selected cluster shadowed by a selected ancestor.
	for c := range selected {
		for p := t.parent[c]; p > 0; p = t.parent[p] {
			if selected[p] {
				delete(selected, c)
				break
			}
		}
	}
	return selected
}

// assignLabels maps each point to its nearest selected ancestor cluster, or
// leaves it as noise. Labels are compacted to 0..k-1 ordered by each
// cluster's lowest member index for determinism.
func (t *condensedTree) assignLabels(labels []int, selected map[int]bool) []int {
	owner := make([]int, t.n)
	for p := 0; p < t.n; p++ {
		owner[p] = Noise
		for c := t.pointCluster[p]; c > 0; c = t.parent[c] {
			if selected[c] {
				owner[p] = c
				break
			}
		}
	}

	compact := make(map[int]int)
	next := 0
	for p := 0; p < t.n; p++ {
		c := owner[p]
		if c == Noise {
			continue
		}
		id, ok := compact[c]
		if !ok {
			id = next
			compact[c] = id
			next++
		}
		labels[p] = id
	}
	return labels
}
