package dedupe

// Option applies a configuration option to the in-memory Deduper.
type Option func(*guessHistory)

// WithMaxSize caps the number of remembered guesses. When full, the oldest
// guess is forgotten first. maxSize <= 0 disables the cap.
func WithMaxSize(maxSize int) Option {
	return func(d *guessHistory) {
		d.maxSize = maxSize
	}
}

// WithNormalizer maps every guess to its comparison key before lookup, so
// that e.g. "Été" and "ete" collide.
func WithNormalizer(fn func(string) string) Option {
	return func(d *guessHistory) {
		if fn != nil {
			d.normalize = fn
		}
	}
}
