package autodiff

import (
	"fmt"
	"sync"

	"github.com/klgraham/OpenNMT/internal/autodiff/ops"
	"github.com/klgraham/OpenNMT/internal/tensor"
)

// GradientTape records operations during the forward pass so gradients
// can be computed by replaying them in reverse.
//
// The tape is safe for concurrent recording, though a single step of
// the recurrent stack records from one goroutine.
type GradientTape struct {
	mu         sync.Mutex
	operations []ops.Operation
	recording  bool
}

// NewGradientTape creates a tape that is recording from the start.
func NewGradientTape() *GradientTape {
	return &GradientTape{recording: true}
}

// Record appends an operation to the tape. No-op when recording is off.
func (t *GradientTape) Record(op ops.Operation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// StartRecording enables operation recording.
func (t *GradientTape) StartRecording() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recording = true
}

// StopRecording disables operation recording. Useful for inference
// passes through a backend that carries a tape.
func (t *GradientTape) StopRecording() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recording = false
}

// IsRecording reports whether operations are currently recorded.
func (t *GradientTape) IsRecording() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recording
}

// Reset clears all recorded operations, keeping the recording flag.
func (t *GradientTape) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.operations = nil
}

// NumOperations returns the number of recorded operations.
func (t *GradientTape) NumOperations() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.operations)
}

// Backward computes gradients of output with respect to every tensor
// that participated in its computation, by traversing the tape in
// reverse. The initial gradient d(output)/d(output) is all ones.
//
// The backend passed in must NOT be the recording decorator itself,
// otherwise the backward pass would append to the tape it is replaying.
func (t *GradientTape) Backward(output *tensor.RawTensor, backend tensor.Backend) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	t.mu.Lock()
	operations := make([]ops.Operation, len(t.operations))
	copy(operations, t.operations)
	t.mu.Unlock()

	if len(operations) == 0 {
		return nil, fmt.Errorf("backward: no operations recorded on tape")
	}

	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	grads[output] = onesRaw(output)

	for i := len(operations) - 1; i >= 0; i-- {
		op := operations[i]

		if multi, ok := op.(ops.MultiOutputOperation); ok {
			outputs := multi.Outputs()
			outputGrads := make([]*tensor.RawTensor, len(outputs))
			haveGrad := false
			for j, out := range outputs {
				if g, found := grads[out]; found {
					outputGrads[j] = g
					haveGrad = true
				}
			}
			if !haveGrad {
				continue
			}
			inputGrads := multi.BackwardMulti(outputGrads, backend)
			accumulate(grads, op.Inputs(), inputGrads, backend)
			continue
		}

		outputGrad, found := grads[op.Output()]
		if !found {
			// The op's output never contributed to the requested output.
			continue
		}

		inputGrads := op.Backward(outputGrad, backend)
		accumulate(grads, op.Inputs(), inputGrads, backend)
	}

	return grads, nil
}

// accumulate adds each input gradient into the gradient map, summing
// when a tensor already has a gradient (fan-out in the forward graph).
func accumulate(grads map[*tensor.RawTensor]*tensor.RawTensor, inputs, inputGrads []*tensor.RawTensor, backend tensor.Backend) {
	for i, input := range inputs {
		grad := inputGrads[i]
		if grad == nil {
			continue
		}
		if existing, found := grads[input]; found {
			grads[input] = backend.Add(existing, grad)
		} else {
			grads[input] = grad
		}
	}
}

// onesRaw builds the seed gradient tensor.
func onesRaw(t *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(t.Shape(), t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("backward: %v", err))
	}

	switch t.DType() {
	case tensor.Float32:
		data := result.AsFloat32()
		for i := range data {
			data[i] = 1.0
		}
	case tensor.Float64:
		data := result.AsFloat64()
		for i := range data {
			data[i] = 1.0
		}
	}

	return result
}
