package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/file.pdf", want: "user/file.pdf"},
		{name: "simple prefix", prefix: "uploads", key: "user/file.pdf", want: "uploads/user/file.pdf"},
		{name: "prefix trailing slash", prefix: "uploads/", key: "user/file.pdf", want: "uploads/user/file.pdf"},
		{name: "prefix and key slashes", prefix: "/uploads/", key: "/user/file.pdf", want: "uploads/user/file.pdf"},
		{name: "nested prefix", prefix: "uploads/profiles", key: "user/file.pdf", want: "uploads/profiles/user/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		endpoint string
		bucket   string
		region   string
		want     string
	}{
		{name: "aws", endpoint: "", bucket: "files", region: "us-east-1", want: "https://files.s3.us-east-1.amazonaws.com"},
		{name: "custom endpoint", endpoint: "http://localhost:9000", bucket: "files", region: "us-east-1", want: "http://localhost:9000/files"},
		{name: "endpoint trailing slash", endpoint: "http://localhost:9000/", bucket: "files", region: "", want: "http://localhost:9000/files"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := baseURL(tt.endpoint, tt.bucket, tt.region); got != tt.want {
				t.Fatalf("baseURL(%q, %q, %q) = %q, want %q", tt.endpoint, tt.bucket, tt.region, got, tt.want)
			}
		})
	}
}
