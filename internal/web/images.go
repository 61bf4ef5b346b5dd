package web

import (
	"net/url"
	"strings"

	"pawhub/internal/models"
)

// imagePolicy rewrites entity image URLs: anything empty, malformed or hosted
// outside the allow-list renders as the placeholder.
type imagePolicy struct {
	hosts       map[string]struct{}
	placeholder string
}

func newImagePolicy(hosts []string, placeholder string) imagePolicy {
	p := imagePolicy{hosts: make(map[string]struct{}, len(hosts)), placeholder: placeholder}
	if p.placeholder == "" {
		p.placeholder = models.PlaceholderImage
	}
	for _, h := range hosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			p.hosts[h] = struct{}{}
		}
	}
	return p
}

func (p imagePolicy) URL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return p.placeholder
	}
	if strings.HasPrefix(raw, "/static/") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" {
		return p.placeholder
	}
	if _, ok := p.hosts[strings.ToLower(u.Hostname())]; !ok {
		return p.placeholder
	}
	return u.String()
}
