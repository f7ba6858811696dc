//go:build !amd64 && !arm64

package cpu

// probe reports no vector extensions; the scalar mixer is used.
func probe() Features { return Features{} }
