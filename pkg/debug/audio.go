package debug

import "math"

// clipThreshold is the level at or above which a sample counts as clipped.
const clipThreshold = 0.99

// AnalysisResult contains the results of audio buffer analysis.
type AnalysisResult struct {
	Peak           float32
	RMS            float32
	ClippedSamples int
	NaNCount       int
	InfCount       int
}

// Clipping reports whether any sample reached full scale.
func (r AnalysisResult) Clipping() bool { return r.ClippedSamples > 0 }

// Valid reports whether every sample was finite.
func (r AnalysisResult) Valid() bool { return r.NaNCount == 0 && r.InfCount == 0 }

// PeakDB returns the peak in dBFS, -inf for silence.
func (r AnalysisResult) PeakDB() float64 {
	return 20 * math.Log10(float64(r.Peak))
}

// Analyze measures a buffer. Non-finite samples are counted and excluded.
func Analyze(buffer []float32) AnalysisResult {
	var result AnalysisResult
	var sumSquares float64
	finite := 0

	for _, sample := range buffer {
		f := float64(sample)
		if math.IsNaN(f) {
			result.NaNCount++
			continue
		}
		if math.IsInf(f, 0) {
			result.InfCount++
			continue
		}

		abs := sample
		if abs < 0 {
			abs = -abs
		}
		result.Peak = max(result.Peak, abs)
		if abs >= clipThreshold {
			result.ClippedSamples++
		}
		sumSquares += f * f
		finite++
	}

	if finite > 0 {
		result.RMS = float32(math.Sqrt(sumSquares / float64(finite)))
	}
	return result
}

// AnalyzeBus merges the analysis of every channel of a bus.
func AnalyzeBus(channels [][]float32) AnalysisResult {
	var total AnalysisResult
	var sumSquares float64
	for _, ch := range channels {
		r := Analyze(ch)
		total.Peak = max(total.Peak, r.Peak)
		total.ClippedSamples += r.ClippedSamples
		total.NaNCount += r.NaNCount
		total.InfCount += r.InfCount
		sumSquares += float64(r.RMS) * float64(r.RMS)
	}
	if len(channels) > 0 {
		total.RMS = float32(math.Sqrt(sumSquares / float64(len(channels))))
	}
	return total
}
