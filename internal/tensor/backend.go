package tensor

// Backend defines the interface that compute backends must implement.
// The method set is exactly the primitive vocabulary the recurrent gate
// graph is built from: two affine projections (MatMul + broadcast Add),
// a three-way split, the two squashing nonlinearities, and the
// elementwise algebra of the update-gate interpolation.
//
// Implementations:
//   - cpu.CPUBackend: pure Go reference implementation
//   - autodiff.AutodiffBackend: decorator that records every call on a
//     gradient tape before delegating to an inner backend
type Backend interface {
	// Element-wise binary operations (NumPy-style broadcasting)
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// Matrix operations
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Manipulation operations
	Chunk(x *RawTensor, n, dim int) []*RawTensor // split into n equal parts
	Cat(tensors []*RawTensor, dim int) *RawTensor

	// Activation functions
	Sigmoid(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
