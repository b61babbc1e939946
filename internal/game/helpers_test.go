package game

// scriptedRand отдает заранее заданные значения, чтобы тесты были детерминированными
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (r *scriptedRand) Intn(n int) int {
	if len(r.ints) == 0 || n <= 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func safeCells(g *Grid) []int {
	var out []int
	for _, c := range g.cells {
		if !c.IsHazard {
			out = append(out, c.Index)
		}
	}
	return out
}

func hazardCells(g *Grid) []int {
	var out []int
	for _, c := range g.cells {
		if c.IsHazard {
			out = append(out, c.Index)
		}
	}
	return out
}
