package shared

import "testing"

func TestWipeByteArray(t *testing.T) {
	b := []byte("s3cretpass")
	WipeByteArray(b)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d not wiped: %d", i, v)
		}
	}

	WipeByteArray(nil)
}
