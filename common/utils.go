package common

// Coalesce returns the first non-zero value, or the zero value when every value is
// zero. The CLI layers flag values over config file values over defaults with it.
//
// Parameters:
//   - values: candidates in priority order
//
// Returns:
//   - T: the first non-zero candidate
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
