package utils

// Ptr returns a pointer to v.
//
//	temperature := utils.Ptr(0.1)
func Ptr[T any](v T) *T {
	return &v
}
