// Package host adapts the modulation effect to a plugin-host style
// interface: numbered parameters with normalized [0,1] values, a
// setup/activate lifecycle, 32- and 64-bit block processing with bypass,
// and a fixed little-endian state layout.
//
// A Processor holds the plain parameter values at all times. The Effect is
// allocated on activation from the current processing setup and receives
// every later parameter change directly.
package host
