// Package level computes time-domain level statistics and zero-crossing
// positions for rendered audio and control signals.
//
// The functions are generic over float32 and float64 buffers so they can be
// applied to oscillator output and to rendered effect output alike.
package level
