package core

// Sample is the set of floating-point types audio buffers are made of.
type Sample interface {
	~float32 | ~float64
}

// Zero sets all values in buf to 0.
func Zero[T Sample](buf []T) {
	for i := range buf {
		buf[i] = 0
	}
}

// Convert copies src into dst converting between sample types and returns the
// number of converted elements.
func Convert[D, S Sample](dst []D, src []S) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = D(src[i])
	}
	return n
}
