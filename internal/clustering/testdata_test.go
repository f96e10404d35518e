package clustering

// Helpers for building 512-dimensional fixtures. blob produces points
// tightly packed around a basis direction; each point gets a distinct
// tiny offset so no two are identical.
func basis(dim int, scale float64) []float64 {
	v := make([]float64, 512)
	v[dim] = scale
	return v
}

func blob(around, count int) [][]float64 {
	points := make([][]float64, count)
	for i := 0; i < count; i++ {
		v := basis(around, 1)
		v[100+around*30+i] = 0.01
		points[i] = v
	}
	return points
}
