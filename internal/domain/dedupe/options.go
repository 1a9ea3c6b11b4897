package dedupe

// Option configures a ring deduper.
type Option func(*ring)

// WithCapacity sets how many record IDs the deduper remembers before the
// oldest are forgotten. A non-positive capacity disables eviction.
func WithCapacity(n int) Option {
	return func(r *ring) {
		r.capacity = n
	}
}
