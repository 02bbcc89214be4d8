package tensor

// Add performs element-wise addition with broadcasting.
//
// Example:
//
//	a := tensor.Ones[float32](Shape{3, 1}, backend)
//	b := tensor.Ones[float32](Shape{3, 5}, backend)
//	c := a.Add(b) // Shape: [3, 5] (broadcast)
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	result := t.backend.Add(t.raw, other.raw)
	return New[T, B](result, t.backend)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	result := t.backend.Sub(t.raw, other.raw)
	return New[T, B](result, t.backend)
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	result := t.backend.Mul(t.raw, other.raw)
	return New[T, B](result, t.backend)
}

// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) → (M, N).
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	result := t.backend.MatMul(t.raw, other.raw)
	return New[T, B](result, t.backend)
}

// Reshape returns a tensor with the same data but different shape.
// The new shape must have the same number of elements.
func (t *Tensor[T, B]) Reshape(newShape ...int) *Tensor[T, B] {
	result := t.backend.Reshape(t.raw, Shape(newShape))
	return New[T, B](result, t.backend)
}

// Transpose transposes the tensor by permuting its dimensions.
// If axes is empty, all dimensions are reversed.
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	result := t.backend.Transpose(t.raw, axes...)
	return New[T, B](result, t.backend)
}

// T is a shortcut for 2D transpose (swaps rows and columns).
// Panics if the tensor is not 2D.
func (t *Tensor[T, B]) T() *Tensor[T, B] {
	if len(t.Shape()) != 2 {
		panic("T() only works for 2D tensors")
	}
	return t.Transpose(1, 0)
}

// Chunk splits the tensor into n equal parts along the given dimension.
// The dimension size must be divisible by n. Supports negative dim
// indexing (-1 = last dimension).
//
// Example:
//
//	gates := projection.Chunk(3, -1) // [B, 3H] → three [B, H] tensors
func (t *Tensor[T, B]) Chunk(n, dim int) []*Tensor[T, B] {
	raws := t.backend.Chunk(t.raw, n, dim)
	results := make([]*Tensor[T, B], len(raws))
	for i, raw := range raws {
		results[i] = New[T, B](raw, t.backend)
	}
	return results
}

// Cat concatenates tensors along the given dimension.
// All tensors must share the backend of the receiver.
func (t *Tensor[T, B]) Cat(others []*Tensor[T, B], dim int) *Tensor[T, B] {
	raws := make([]*RawTensor, 0, len(others)+1)
	raws = append(raws, t.raw)
	for _, o := range others {
		raws = append(raws, o.raw)
	}
	result := t.backend.Cat(raws, dim)
	return New[T, B](result, t.backend)
}

// Sigmoid applies the logistic function element-wise: σ(x) = 1/(1+exp(-x)).
func (t *Tensor[T, B]) Sigmoid() *Tensor[T, B] {
	result := t.backend.Sigmoid(t.raw)
	return New[T, B](result, t.backend)
}

// Tanh applies the hyperbolic tangent element-wise.
func (t *Tensor[T, B]) Tanh() *Tensor[T, B] {
	result := t.backend.Tanh(t.raw)
	return New[T, B](result, t.backend)
}
