// Package shared provides small helpers used by more than one binary.
package shared

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Use it to drop passwords read from the terminal once they have been copied
// where they are needed.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
