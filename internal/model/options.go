package model

// Options configures the behaviour of the Builder. Options are constructed by
// the public adapter in pkg/model and passed into New.
type Options struct {
	Labeler func(string) string
	// Order lists property keys in the order fields should appear. Keys not
	// listed follow in lexical order.
	Order []string
	// HideDiagnostics disables diagnostics on built expression fields.
	HideDiagnostics bool
}

func defaultOptions() Options {
	return Options{
		Labeler: DefaultLabeler,
	}
}
