package differ

// Option is a functional option for configuring a Differ.
type Option func(*differ)

// WithIgnoredFields sets entity fields to ignore during comparison, e.g.
// "source_origin" or "annotations".
func WithIgnoredFields(fields ...string) Option {
	return func(d *differ) {
		for _, field := range fields {
			d.ignoreFields[field] = true
		}
	}
}

// WithDiagnostics enables or disables comparison of diagnostics.
func WithDiagnostics(enabled bool) Option {
	return func(d *differ) {
		d.diagnostics = enabled
	}
}
