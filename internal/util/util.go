package util

// Pointer returns a pointer to a copy of v. Handy for override structs.
func Pointer[T any](v T) *T {
	return &v
}

// ValueOr dereferences ptr, or returns fallback when ptr is nil
func ValueOr[T any](ptr *T, fallback T) T {
	if ptr != nil {
		return *ptr
	}
	return fallback
}
