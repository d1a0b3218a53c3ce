package tenant

import "strings"

// Domain is the configuration for a single brand served by this
// instance. The table is static and loaded once at startup.
type Domain struct {
	Key   string
	Name  string
	Hosts []string
	Logo  string
	Theme string
	Slug  string
}

// Resolver maps a request's Host header onto a Domain. Matching is by
// substring containment against each registered host pattern, first
// declared match wins. The "*" pattern matches any host, so wildcard
// tenants must be declared last or they mask everything after them.
type Resolver struct {
	domains []Domain
}

func NewResolver(domains []Domain) *Resolver {
	return &Resolver{domains: domains}
}

// Resolve returns the first domain one of whose host patterns occurs in
// the given host header, or false when nothing matches.
func (r *Resolver) Resolve(host string) (*Domain, bool) {
	for i := range r.domains {
		d := &r.domains[i]
		for _, pattern := range d.Hosts {
			if pattern == "*" || strings.Contains(host, pattern) {
				return d, true
			}
		}
	}
	return nil, false
}

// DefaultDomains is the deploy-time tenant table.
func DefaultDomains() []Domain {
	return []Domain{
		{
			Key:   "attam",
			Name:  "All Things to All Men",
			Hosts: []string{"allthingstoallmen.org", "attam0.osc-fr1.scalingo.io"},
			Theme: "anchor",
			Slug:  "attam",
		},
		{
			Key:   "potaunoir",
			Name:  "Pot au Noir",
			Hosts: []string{"pot-au-noir.fr", "pot-au-noir.com", "localhost", "127.0.0.1", "*"},
			Logo:  "/static/trames/potaunoir/logo-1.png",
			Theme: "pan-light",
			Slug:  "pot-au-noir",
		},
	}
}
