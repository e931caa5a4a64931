package nse

import "net/http"

// browserTransport injects the browser-like identification headers the
// upstream expects on every request.
type browserTransport struct {
	agent    string
	language string
	base     http.RoundTripper
}

func (t browserTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.agent)
	if req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", t.language)
	}
	return t.base.RoundTrip(req)
}
