package ml

import (
	"fmt"
	"math"

	"github.com/deckscore/deckscore/internal/common"
)

// TruncatedSVD projects rows onto the top singular directions of the fitted
// matrix. The decomposition runs on the n-by-n Gram matrix, which is cheap
// here because the pipeline fits on at most a few hundred labeled documents.
// Requested components beyond the matrix rank are zero vectors, so the extra
// transformed columns come out zero instead of numeric noise.
type TruncatedSVD struct {
	// Components holds k right singular vectors, each of input length.
	Components [][]float64 `json:"components"`
}

// FitSVD computes the top k right singular vectors of x.
func FitSVD(x [][]float64, k int) (*TruncatedSVD, error) {
	n := len(x)
	if n == 0 {
		return nil, fmt.Errorf("%w: no rows to decompose", common.ErrNoFeatures)
	}
	d := len(x[0])
	if k <= 0 {
		return nil, fmt.Errorf("%w: no components requested (k=%d)", common.ErrNoFeatures, k)
	}

	// Gram matrix G = X Xᵀ.
	gram := make([][]float64, n)
	for i := range gram {
		gram[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := Dot(x[i], x[j])
			gram[i][j] = v
			gram[j][i] = v
		}
	}

	values, vectors := jacobiEigen(gram)

	// Order eigenpairs by descending eigenvalue.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if values[order[j]] > values[order[i]] {
				order[i], order[j] = order[j], order[i]
			}
		}
	}

	var maxEigen float64
	if n > 0 {
		maxEigen = math.Max(values[order[0]], 0)
	}
	tol := 1e-10 * math.Max(maxEigen, 1)

	components := make([][]float64, k)
	for c := 0; c < k; c++ {
		component := make([]float64, d)
		if c < n && values[order[c]] > tol {
			sigma := math.Sqrt(values[order[c]])
			// v = Xᵀ u / σ with u the eigenvector column.
			for i := 0; i < n; i++ {
				u := vectors[i][order[c]]
				if u == 0 {
					continue
				}
				for j, xv := range x[i] {
					component[j] += u * xv
				}
			}
			for j := range component {
				component[j] /= sigma
			}
			flipSign(component)
		}
		components[c] = component
	}

	return &TruncatedSVD{Components: components}, nil
}

// Transform projects rows onto the fitted components.
func (t *TruncatedSVD) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		projected := make([]float64, len(t.Components))
		for c, component := range t.Components {
			projected[c] = Dot(row, component)
		}
		out[i] = projected
	}
	return out
}

// flipSign fixes the sign convention: the element with the largest magnitude
// is made positive, so the decomposition is reproducible.
func flipSign(v []float64) {
	best := 0
	for j, val := range v {
		if math.Abs(val) > math.Abs(v[best]) {
			best = j
		}
	}
	if len(v) > 0 && v[best] < 0 {
		for j := range v {
			v[j] = -v[j]
		}
	}
}

// jacobiEigen diagonalizes a symmetric matrix with cyclic Jacobi rotations.
// Returns the eigenvalues and the matrix whose columns are the eigenvectors.
// The input matrix is consumed.
func jacobiEigen(a [][]float64) ([]float64, [][]float64) {
	n := len(a)
	vectors := make([][]float64, n)
	for i := range vectors {
		vectors[i] = make([]float64, n)
		vectors[i][i] = 1
	}

	const maxSweeps = 100
	for sweep := 0; sweep < maxSweeps; sweep++ {
		var off float64
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				off += a[i][j] * a[i][j]
			}
		}
		if off < 1e-20 {
			break
		}

		for p := 0; p < n-1; p++ {
			for q := p + 1; q < n; q++ {
				if math.Abs(a[p][q]) < 1e-18 {
					continue
				}
				rotate(a, vectors, p, q)
			}
		}
	}

	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = a[i][i]
	}
	return values, vectors
}

// rotate annihilates a[p][q] with a Givens rotation, updating the
// accumulated eigenvector matrix alongside.
func rotate(a, vectors [][]float64, p, q int) {
	n := len(a)
	apq := a[p][q]
	theta := (a[q][q] - a[p][p]) / (2 * apq)
	t := 1 / (math.Abs(theta) + math.Sqrt(theta*theta+1))
	if theta < 0 {
		t = -t
	}
	c := 1 / math.Sqrt(t*t+1)
	s := t * c

	for i := 0; i < n; i++ {
		aip, aiq := a[i][p], a[i][q]
		a[i][p] = c*aip - s*aiq
		a[i][q] = s*aip + c*aiq
	}
	for j := 0; j < n; j++ {
		apj, aqj := a[p][j], a[q][j]
		a[p][j] = c*apj - s*aqj
		a[q][j] = s*apj + c*aqj
	}
	for i := 0; i < n; i++ {
		vip, viq := vectors[i][p], vectors[i][q]
		vectors[i][p] = c*vip - s*viq
		vectors[i][q] = s*vip + c*viq
	}
}
