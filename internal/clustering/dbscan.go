package clustering

// DBSCAN is the simpler density backend: a fixed-radius neighborhood scan.
// Clusters smaller than MinClusterSize are demoted to noise after
// expansion, so it honors the same contract as the hierarchical backend.
type DBSCAN struct {
	cfg Config
}

func (d *DBSCAN) Name() string { return "dbscan" }

func (d *DBSCAN) Fit(vectors [][]float64) ([]int, error) {
	n := len(vectors)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}
	if n == 0 {
		return labels, nil
	}

	eps := d.cfg.Epsilon
	if eps <= 0 {
		eps = 0.8
	}
	minSamples := d.cfg.MinSamples
	if minSamples < 1 {
		minSamples = 1
	}

	dist := distanceMatrix(vectors)

	// Neighborhoods include the point itself.
	neighbors := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if dist[i][j] <= eps {
				neighbors[i] = append(neighbors[i], j)
			}
		}
	}

	visited := make([]bool, n)
	next := 0
	for i := 0; i < n; i++ {
		if visited[i] || len(neighbors[i]) < minSamples {
			continue
		}

		// Grow a cluster from core point i.
		queue := []int{i}
		visited[i] = true
		var members []int
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			members = append(members, p)
			if len(neighbors[p]) < minSamples {
				continue // border point, do not expand
			}
			for _, q := range neighbors[p] {
				if !visited[q] {
					visited[q] = true
					queue = append(queue, q)
				}
			}
		}

		if len(members) < d.cfg.MinClusterSize {
			continue // too small, members stay noise
		}
		for _, p := range members {
			labels[p] = next
		}
		next++
	}

	return labels, nil
}
