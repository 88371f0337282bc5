package httpapi

import "testing"

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", false},
		{"bearer abc.def.ghi", "abc.def.ghi", false},
		{"  Bearer abc  ", "abc", false},
		{"", "", true},
		{"Bearer ", "", true},
		{"Basic dXNlcjpwYXNz", "", true},
		{"abc.def.ghi", "", true},
	}
	for _, tc := range cases {
		got, err := extractBearerToken(tc.header)
		if tc.wantErr {
			if err == nil {
				t.Errorf("extractBearerToken(%q): expected error", tc.header)
			}
			continue
		}
		if err != nil {
			t.Errorf("extractBearerToken(%q): %v", tc.header, err)
			continue
		}
		if got != tc.want {
			t.Errorf("extractBearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestIsPublicPath(t *testing.T) {
	public := []string{"/auth/register", "/auth/login", "/metrics", "/healthz", "/readyz", "/"}
	for _, p := range public {
		if !isPublicPath(p) {
			t.Errorf("%s should be public", p)
		}
	}
	protected := []string{"/auth/me", "/request/send", "/request/history", "/request/history/update", "/request/history/delete"}
	for _, p := range protected {
		if isPublicPath(p) {
			t.Errorf("%s should require auth", p)
		}
	}
}
