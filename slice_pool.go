package cfr

// floatSlicePool recycles the scratch buffers used during tree traversal
// for action values and child reach probabilities.
type floatSlicePool struct {
	pool [][]float64
}

// alloc returns a zeroed slice of length n, reusing pooled capacity when
// available.
func (p *floatSlicePool) alloc(n int) []float64 {
	if m := len(p.pool); m > 0 {
		next := p.pool[m-1]
		p.pool = p.pool[:m-1]
		return append(next, make([]float64, n)...)
	}

	return make([]float64, n)
}

// free returns a slice to the pool. The caller must not use s afterwards.
func (p *floatSlicePool) free(s []float64) {
	if cap(s) > 0 {
		p.pool = append(p.pool, s[:0])
	}
}
