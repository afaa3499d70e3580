package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/snaketips/pkg/clientip"
)

func TestResolver_IP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{"remote addr", nil, "203.0.113.5:4321", nil, "203.0.113.5"},
		{"untrusted header ignored", nil, "203.0.113.5:4321", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "203.0.113.5"},
		{"trusted forwarded for", []string{"x-forwarded-for"}, "10.0.0.1:80", map[string]string{"X-Forwarded-For": "bogus, 198.51.100.7, 10.0.0.2"}, "198.51.100.7"},
		{"header order", []string{"CF-Connecting-IP", "X-Forwarded-For"}, "10.0.0.1:80", map[string]string{"CF-Connecting-IP": "192.0.2.9", "X-Forwarded-For": "198.51.100.7"}, "192.0.2.9"},
		{"invalid trusted header falls back", []string{"X-Real-IP"}, "10.0.0.1:80", map[string]string{"X-Real-IP": "nope"}, "10.0.0.1"},
		{"ipv6 remote", nil, "[2001:db8::1]:443", nil, "2001:db8::1"},
		{"ipv4 mapped", nil, "[::ffff:192.0.2.1]:443", nil, "192.0.2.1"},
		{"bare remote", nil, "192.0.2.44", nil, "192.0.2.44"},
		{"garbage remote", nil, "not-an-ip", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientip.New(tt.trusted...).IP(r))
		})
	}
}

func TestResolver_Middleware(t *testing.T) {
	t.Parallel()

	var got string
	h := clientip.New().Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = clientip.FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "192.0.2.1", got)
}
