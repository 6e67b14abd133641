package config

import "iter"

// Filter is a set of certificate names
type Filter map[string]struct{}

// NewFilter creates a Filter from a list of names, usually the remaining
// command line arguments
func NewFilter(names ...string) Filter {
	f := make(Filter, len(names))
	for _, i := range names {
		f[i] = struct{}{}
	}
	return f
}

// FilterCerts yields the certificates with a name in the filter, in the order
// they were loaded. An empty filter yields every certificate. Names in the
// filter which match nothing are ignored.
func (c *Config) FilterCerts(filter Filter) iter.Seq[CertConfig] {
	return func(yield func(CertConfig) bool) {
		for _, cert := range c.Certs {
			if len(filter) != 0 {
				if _, ok := filter[cert.Name]; !ok {
					continue
				}
			}
			if !yield(cert) {
				return
			}
		}
	}
}
