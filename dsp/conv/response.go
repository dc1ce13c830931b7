package conv

import "fmt"

// ConvolveResponse convolves signal with an instrument response. The
// response is centred on each sample, so the result has len(signal) samples
// and a unit impulse response returns the signal unchanged.
//
// The response must have an odd number of samples and fewer than half as
// many as the signal.
func ConvolveResponse(signal, response []float64) ([]float64, error) {
	if err := CheckResponse(len(signal), len(response)); err != nil {
		return nil, err
	}

	full, err := FFTConvolve(signal, response)
	if err != nil {
		return nil, err
	}
	start := (len(response) - 1) / 2
	out := make([]float64, len(signal))
	copy(out, full[start:start+len(signal)])
	return out, nil
}

// CheckResponse validates the lengths of a signal and its response.
func CheckResponse(signalLen, responseLen int) error {
	switch {
	case signalLen == 0:
		return ErrEmptyInput
	case responseLen == 0:
		return ErrEmptyKernel
	case responseLen%2 == 0:
		return fmt.Errorf("%w: have %d points", ErrResponseLengthNotOdd, responseLen)
	case 2*responseLen >= signalLen:
		return fmt.Errorf("%w: response %d, signal %d", ErrResponseTooLarge, responseLen, signalLen)
	}
	return nil
}
