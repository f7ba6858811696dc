// Package buffer provides power-of-two circular sample buffers for delay
// lines. Indices of any sign wrap with a single mask, so callers keep plain
// int cursors and never branch on the buffer end.
package buffer
