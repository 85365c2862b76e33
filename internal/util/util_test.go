package util

import (
	"testing"
	"time"
)

func TestSHA256Hex(t *testing.T) {
	t.Parallel()

	// echo -n "secret" | sha256sum
	const want = "2bb80d537b1da3e38bd30361aa855686bde0eacd7162fef6a25fe97bf527a25b"

	if got := SHA256Hex("secret"); got != want {
		t.Fatalf("SHA256Hex(secret) = %s, want %s", got, want)
	}
	if SHA256Hex("secret") == SHA256Hex("Secret") {
		t.Fatal("digests of different inputs must differ")
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{name: "negative", duration: -time.Minute, expected: "0s"},
		{name: "under one minute", duration: 45 * time.Second, expected: "45s"},
		{name: "rounded second to minute", duration: 59*time.Second + 500*time.Millisecond, expected: "1m0s"},
		{name: "minutes and seconds", duration: 2*time.Minute + 30*time.Second, expected: "2m30s"},
		{name: "force logout window", duration: 24 * time.Hour, expected: "24h0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FormatDuration(tt.duration); got != tt.expected {
				t.Fatalf("FormatDuration(%s) = %s, want %s", tt.duration, got, tt.expected)
			}
		})
	}
}
