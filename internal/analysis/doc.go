// Package analysis summarizes recorded pointer traces.
//
//   - [Resample]: speed signal on a uniform time grid
//   - [PowerSpectrum], [DominantFrequency]: periodicity of the gesture
//   - [BandDwell], [Transitions]: how long and how often each band held
//   - [PathToASCII]: the pointer path drawn in the terminal
//
// # Gesture rhythm
//
// A back-and-forth gesture shows up as a spectral peak:
//
//	sig := analysis.Resample(samples, 30)
//	freq, _ := analysis.DominantFrequency(sig, 30)
package analysis
