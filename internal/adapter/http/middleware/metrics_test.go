package middleware

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "quote confirm collapses id",
			path: "/api/v1/deliveries/quotes/quote-01HX5K/confirm",
			want: "/api/v1/deliveries/quotes/:id/confirm",
		},
		{
			name: "bare quote id",
			path: "/api/v1/deliveries/quotes/quote-01HX5K",
			want: "/api/v1/deliveries/quotes/:id",
		},
		{
			name: "delivery id collapses",
			path: "/api/v1/deliveries/DEL-123",
			want: "/api/v1/deliveries/:id",
		},
		{
			name: "quote collection untouched",
			path: "/api/v1/deliveries/quotes",
			want: "/api/v1/deliveries/quotes",
		},
		{
			name: "static paths untouched",
			path: "/api/v1/balance",
			want: "/api/v1/balance",
		},
		{
			name: "health untouched",
			path: "/health",
			want: "/health",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.want {
				t.Fatalf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
