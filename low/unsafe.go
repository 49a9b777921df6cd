package low

import "unsafe"

// UnsafeString returns string pointing to the same memory as p.
// p must not be changed while the string is in use.
func UnsafeString(p []byte) string {
	if len(p) == 0 {
		return ""
	}

	return unsafe.String(unsafe.SliceData(p), len(p))
}

// UnsafeBytes returns bytes of s. They must not be modified.
func UnsafeBytes(s string) []byte {
	if s == "" {
		return nil
	}

	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// Reinterpret returns the same memory as a slice of another one byte wide type.
func Reinterpret[T, F ~byte | ~int8](p []F) []T {
	if len(p) == 0 {
		return nil
	}

	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(p))), len(p))
}

// UnsafeInt8s is Reinterpret for the common case.
func UnsafeInt8s(p []byte) []int8 {
	return Reinterpret[int8](p)
}
