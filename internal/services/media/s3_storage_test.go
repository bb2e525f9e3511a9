package media

import "testing"

func TestImageContentType(t *testing.T) {
	cases := []struct {
		name        string
		key         string
		contentType string
		want        string
	}{
		{"declared type wins", "listings/a/b.png", "image/webp", "image/webp"},
		{"extension fallback", "listings/a/b.png", "", "image/png"},
		{"unknown extension", "listings/a/b.bin", "  ", "application/octet-stream"},
	}

	for _, tc := range cases {
		if got := imageContentType(tc.key, tc.contentType); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}
