package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimitKey(t *testing.T) {
	tests := []struct {
		name       string
		sessionID  string
		header     string
		remoteAddr string
		want       string
	}{
		{
			name:       "session id wins",
			sessionID:  "sess-abc",
			header:     "203.0.113.1",
			remoteAddr: "198.51.100.10:1234",
			want:       "session:sess-abc",
		},
		{
			name:       "single forwarded ip",
			header:     "203.0.113.1",
			remoteAddr: "198.51.100.10:1234",
			want:       "203.0.113.1",
		},
		{
			name:       "multiple ips use first",
			header:     " 203.0.113.1 , 198.51.100.2 ",
			remoteAddr: "198.51.100.10:1234",
			want:       "203.0.113.1",
		},
		{
			name:       "invalid forwarded falls back",
			header:     "invalid",
			remoteAddr: "198.51.100.10:1234",
			want:       "198.51.100.10",
		},
		{
			name:       "empty forwarded uses remote host",
			header:     "",
			remoteAddr: "198.51.100.10:1234",
			want:       "198.51.100.10",
		},
		{
			name:       "ipv6 forwarded",
			header:     "2001:db8::1",
			remoteAddr: net.JoinHostPort("2001:db8::2", "443"),
			want:       "2001:db8::1",
		},
		{
			name:       "remote without port",
			header:     "invalid",
			remoteAddr: "203.0.113.1",
			want:       "203.0.113.1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.sessionID != "" {
				req.Header.Set("X-Session-Id", tc.sessionID)
			}
			if tc.header != "" {
				req.Header.Set("X-Forwarded-For", tc.header)
			}
			if got := rateLimitKey(req); got != tc.want {
				t.Fatalf("rateLimitKey() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRateLimitPerSession(t *testing.T) {
	handler := RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(session string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/rate", nil)
		req.Header.Set("X-Session-Id", session)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := do("s1"); got != http.StatusOK {
		t.Fatalf("first request = %d", got)
	}
	if got := do("s1"); got != http.StatusOK {
		t.Fatalf("second request = %d", got)
	}
	if got := do("s1"); got != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", got)
	}
	if got := do("s2"); got != http.StatusOK {
		t.Fatalf("other session = %d, want 200", got)
	}
}
