package gate

import (
	"math"
	"math/cmplx"
)

// Matrix is a dense square complex matrix stored row-major.
type Matrix struct {
	dim  int
	data []complex128
}

// NewMatrix builds a matrix from rows. All rows must have len(rows) entries.
func NewMatrix(rows [][]complex128) Matrix {
	n := len(rows)
	m := Zeros(n)
	for i, row := range rows {
		if len(row) != n {
			panic("gate: matrix is not square")
		}
		copy(m.data[i*n:(i+1)*n], row)
	}
	return m
}

// Zeros returns an n x n zero matrix.
func Zeros(n int) Matrix {
	return Matrix{dim: n, data: make([]complex128, n*n)}
}

// Identity returns the n x n identity.
func Identity(n int) Matrix {
	m := Zeros(n)
	for i := range n {
		m.data[i*n+i] = 1
	}
	return m
}

// Diag returns a diagonal matrix.
func Diag(entries ...complex128) Matrix {
	m := Zeros(len(entries))
	for i, e := range entries {
		m.data[i*m.dim+i] = e
	}
	return m
}

func (m Matrix) Dim() int { return m.dim }

func (m Matrix) At(i, j int) complex128 { return m.data[i*m.dim+j] }

func (m Matrix) set(i, j int, v complex128) { m.data[i*m.dim+j] = v }

// Mul returns m·o.
func (m Matrix) Mul(o Matrix) Matrix {
	if m.dim != o.dim {
		panic("gate: dimension mismatch")
	}
	n := m.dim
	out := Zeros(n)
	for i := range n {
		for k := range n {
			a := m.data[i*n+k]
			if a == 0 {
				continue
			}
			for j := range n {
				out.data[i*n+j] += a * o.data[k*n+j]
			}
		}
	}
	return out
}

// Scale returns c·m.
func (m Matrix) Scale(c complex128) Matrix {
	out := Zeros(m.dim)
	for i, v := range m.data {
		out.data[i] = c * v
	}
	return out
}

// Dagger returns the conjugate transpose.
func (m Matrix) Dagger() Matrix {
	n := m.dim
	out := Zeros(n)
	for i := range n {
		for j := range n {
			out.data[j*n+i] = cmplx.Conj(m.data[i*n+j])
		}
	}
	return out
}

// Kron returns the Kronecker product a ⊗ b. With little-endian ordering, b acts on
// the low qubits and a on the high ones.
func Kron(a, b Matrix) Matrix {
	n := a.dim * b.dim
	out := Zeros(n)
	for ai := range a.dim {
		for aj := range a.dim {
			av := a.At(ai, aj)
			if av == 0 {
				continue
			}
			for bi := range b.dim {
				for bj := range b.dim {
					out.set(ai*b.dim+bi, aj*b.dim+bj, av*b.At(bi, bj))
				}
			}
		}
	}
	return out
}

// AllClose reports whether every entry of m is within tol of o.
func (m Matrix) AllClose(o Matrix, tol float64) bool {
	if m.dim != o.dim {
		return false
	}
	for i, v := range m.data {
		if cmplx.Abs(v-o.data[i]) > tol {
			return false
		}
	}
	return true
}

// IsUnitary reports whether m·m† is the identity within tol.
func (m Matrix) IsUnitary(tol float64) bool {
	return m.Mul(m.Dagger()).AllClose(Identity(m.dim), tol)
}

// EquivUpToPhase reports whether m equals o up to a global phase.
func (m Matrix) EquivUpToPhase(o Matrix, tol float64) bool {
	if m.dim != o.dim {
		return false
	}
	// Use the largest entry of o to fix the phase.
	best, idx := 0.0, -1
	for i, v := range o.data {
		if a := cmplx.Abs(v); a > best {
			best, idx = a, i
		}
	}
	if idx < 0 {
		return m.AllClose(o, tol)
	}
	if cmplx.Abs(m.data[idx]) < tol {
		return false
	}
	phase := m.data[idx] / o.data[idx]
	phase /= complex(cmplx.Abs(phase), 0)
	return m.AllClose(o.Scale(phase), tol)
}

// phase returns e^{iθ}.
func phase(theta float64) complex128 {
	return cmplx.Exp(complex(0, theta))
}

func cosSin(theta float64) (complex128, complex128) {
	return complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
}
