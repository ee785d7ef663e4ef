package search

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// surrogate is a Gaussian-process regressor over the normalized parameter
// square. It ranks candidate points between simulator runs so the expensive
// evaluations concentrate where low scores are plausible.
type surrogate struct {
	points [][]float64
	alpha  *mat.VecDense
	chol   mat.Cholesky
	mean   float64
	std    float64
	best   float64 // lowest standardized observation
}

const (
	// RBF length scale over the unit square. Cycle and ratio are both
	// normalized to [0,1], so one scale serves both axes.
	kernelLengthScale = 0.2
	// Observation noise keeps the kernel matrix positive definite even when
	// two rounded candidates collapse onto the same point.
	kernelNoise = 1e-6
)

func rbfKernel(a, b []float64) float64 {
	var d2 float64
	for i := range a {
		diff := a[i] - b[i]
		d2 += diff * diff
	}
	return math.Exp(-d2 / (2 * kernelLengthScale * kernelLengthScale))
}

// fitSurrogate conditions a GP on the observations. Scores are standardized
// so penalty-dominated runs do not swamp the kernel scale.
func fitSurrogate(points [][]float64, scores []float64) (*surrogate, error) {
	n := len(points)
	if n < 2 || n != len(scores) {
		return nil, fmt.Errorf("need at least two observations, got %d/%d", n, len(scores))
	}
	s := &surrogate{points: points}
	s.mean = stat.Mean(scores, nil)
	s.std = stat.StdDev(scores, nil)
	if s.std < 1e-12 {
		// Flat landscape so far. Zero-mean prior still yields a usable
		// variance ranking for exploration.
		s.std = 1
	}
	y := mat.NewVecDense(n, nil)
	s.best = math.Inf(1)
	for i, v := range scores {
		z := (v - s.mean) / s.std
		y.SetVec(i, z)
		if z < s.best {
			s.best = z
		}
	}

	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := rbfKernel(points[i], points[j])
			if i == j {
				v += kernelNoise
			}
			k.SetSym(i, j, v)
		}
	}
	if ok := s.chol.Factorize(k); !ok {
		return nil, fmt.Errorf("kernel matrix not positive definite")
	}
	s.alpha = mat.NewVecDense(n, nil)
	if err := s.chol.SolveVecTo(s.alpha, y); err != nil {
		return nil, err
	}
	return s, nil
}

// predict returns the standardized posterior mean and standard deviation at x.
func (s *surrogate) predict(x []float64) (mu, sigma float64) {
	n := len(s.points)
	kstar := mat.NewVecDense(n, nil)
	for i, p := range s.points {
		kstar.SetVec(i, rbfKernel(x, p))
	}
	mu = mat.Dot(kstar, s.alpha)
	v := mat.NewVecDense(n, nil)
	if err := s.chol.SolveVecTo(v, kstar); err != nil {
		return mu, 0
	}
	variance := 1 + kernelNoise - mat.Dot(kstar, v)
	if variance < 0 {
		variance = 0
	}
	return mu, math.Sqrt(variance)
}

// expectedImprovement scores x for minimization against the best observation.
func (s *surrogate) expectedImprovement(x []float64) float64 {
	mu, sigma := s.predict(x)
	improvement := s.best - mu
	if sigma < 1e-12 {
		return math.Max(improvement, 0)
	}
	z := improvement / sigma
	return improvement*distuv.UnitNormal.CDF(z) + sigma*distuv.UnitNormal.Prob(z)
}
