package optimizer

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/wonny/frontier/internal/estimator"
)

// ErrSingularCovariance is returned when Σ is not positive definite
var ErrSingularCovariance = errors.New("covariance matrix is not positive definite")

// ClosedFormMinVariance solves min wᵀΣw subject to Σw = 1 only:
// w = Σ⁻¹1 / (1ᵀΣ⁻¹1). Bounds are ignored.
// 일반 solver의 검증 기준으로만 사용
func ClosedFormMinVariance(s *estimator.Statistics) ([]float64, error) {
	n := s.N()

	var chol mat.Cholesky
	if ok := chol.Factorize(s.Covariance); !ok {
		return nil, ErrSingularCovariance
	}

	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}

	var x mat.VecDense
	if err := chol.SolveVecTo(&x, mat.NewVecDense(n, ones)); err != nil {
		return nil, ErrSingularCovariance
	}

	total := mat.Sum(&x)
	if math.Abs(total) < 1e-15 {
		return nil, ErrSingularCovariance
	}

	w := make([]float64, n)
	for i := range w {
		w[i] = x.AtVec(i) / total
	}
	return w, nil
}
