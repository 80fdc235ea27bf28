package voice

import (
	"math"
	"time"
)

const (
	defaultMinThreshold     = 0.01
	defaultThresholdRatio   = 1.5
	defaultThresholdDamping = 0.15
)

// EnergyDetector - tells speech from background by frame RMS against an adaptive threshold.
type EnergyDetector struct {
	Threshold    float64
	MinThreshold float64
	// Ratio is how far above the ambient level speech has to be.
	Ratio float64
	// Damping is how fast the threshold follows the ambient level per second of silence.
	Damping float64
}

func NewEnergyDetector() *EnergyDetector {
	return &EnergyDetector{
		Threshold:    defaultMinThreshold,
		MinThreshold: defaultMinThreshold,
		Ratio:        defaultThresholdRatio,
		Damping:      defaultThresholdDamping,
	}
}

// Calibrate - sets the threshold from the average RMS of ambient frames.
func (that *EnergyDetector) Calibrate(ambient []float64) {
	if len(ambient) == 0 {
		return
	}

	var sum float64
	for _, rms := range ambient {
		sum += rms
	}

	that.Threshold = math.Max(that.MinThreshold, sum/float64(len(ambient))*that.Ratio)
}

// Observe - drifts the threshold towards a non-speech frame, weighted by its duration.
func (that *EnergyDetector) Observe(rms float64, frame time.Duration) {
	damping := math.Pow(that.Damping, frame.Seconds())
	target := rms * that.Ratio

	that.Threshold = math.Max(that.MinThreshold, that.Threshold*damping+target*(1-damping))
}

func (that *EnergyDetector) IsSpeech(rms float64) bool {
	return rms > that.Threshold
}

func frameRMS(f []float32) float64 {
	if len(f) == 0 {
		return 0
	}

	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
