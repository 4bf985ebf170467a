package function

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"

	"gonum.org/v1/gonum/dsp/fourier"
)

const spectrumSamples = 256

// spectrumArgs are shared by the phase built-ins: noise level in units of 1e-4,
// random seed, circular shift, and trailing zero padding.
var spectrumArgs = []Arg{
	{Name: "noise", Default: Default(0)},
	{Name: "seed", Default: Default(0)},
	{Name: "roll", Default: Default(0)},
	{Name: "zeros", Default: Default(0)},
}

func init() {
	register(New("spectrum_phase", spectrumArgs, false, func(_ []float64, p []float64) ([]float64, error) {
		return spectrumPhase(p, false)
	}), "phase of the FFT of a shifted, noisy x*exp(-x/3) pulse")

	register(New("spectrum_unwrapped", spectrumArgs, false, func(_ []float64, p []float64) ([]float64, error) {
		return spectrumPhase(p, true)
	}), "unwrapped phase of the FFT of a shifted, noisy x*exp(-x/3) pulse")
}

func spectrumPhase(p []float64, unwrap bool) ([]float64, error) {
	zeros := int(math.Round(p[3]))
	if zeros < 0 {
		return nil, fmt.Errorf("zeros must not be negative, got %d", zeros)
	}
	pulse := make([]float64, spectrumSamples)
	for i := range pulse {
		x := 20 * float64(i) / float64(spectrumSamples-1)
		pulse[i] = x * math.Exp(-x/3)
	}
	shift := 5 + int(math.Round(p[2]))
	rnd := rand.New(rand.NewSource(int64(math.Round(p[1]))))
	seq := make([]float64, spectrumSamples+zeros)
	for i := range pulse {
		j := ((i+shift)%spectrumSamples + spectrumSamples) % spectrumSamples
		seq[j] = pulse[i]
	}
	for i := 0; i < spectrumSamples; i++ {
		seq[i] *= 1 + rnd.NormFloat64()*p[0]/10000
	}

	coeff := fourier.NewFFT(len(seq)).Coefficients(nil, seq)
	half := len(seq) / 2
	if half > len(coeff) {
		half = len(coeff)
	}
	out := make([]float64, half)
	for i := range out {
		out[i] = cmplx.Phase(coeff[i])
	}
	if unwrap {
		unwrapPhase(out)
	}
	return out, nil
}

// unwrapPhase removes 2*pi jumps between consecutive samples in place.
func unwrapPhase(phase []float64) {
	var offset float64
	for i := 1; i < len(phase); i++ {
		d := phase[i] + offset - phase[i-1]
		switch {
		case d > math.Pi:
			offset -= 2 * math.Pi * math.Ceil((d-math.Pi)/(2*math.Pi))
		case d < -math.Pi:
			offset += 2 * math.Pi * math.Ceil((-d-math.Pi)/(2*math.Pi))
		}
		phase[i] += offset
	}
}
