package envutil

// Option modifies a Reader. Readers such as String and Duration accept
// options so callers can supply defaults and validation inline.
type Option[T any] func(Reader[T]) Reader[T]

// Default supplies a value to use when the variable is not set.
func Default[T any](dfl T) Option[T] {
	return func(rdr Reader[T]) Reader[T] {
		return rdr.WithDefault(dfl)
	}
}

// Validate runs f against the value. A non-nil error marks the Reader as failed.
func Validate[T any](f func(T) error) Option[T] {
	return func(rdr Reader[T]) Reader[T] {
		return rdr.Map(func(val T) (T, error) {
			return val, f(val)
		})
	}
}
