package infra

import (
	"testing"
	"time"
)

func TestFormatHashrate(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{500, "500 H/s"},
		{1_000, "1.00 KH/s"},
		{12_345, "12.35 KH/s"},
		{1_000_000, "1.00 MH/s"},
		{2_560_000, "2.56 MH/s"},
	}
	for _, tc := range cases {
		if got := FormatHashrate(tc.in); got != tc.want {
			t.Errorf("FormatHashrate(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1_000, "1,000"},
		{18_500_123, "18,500,123"},
		{1_234_567_890, "1,234,567,890"},
	}
	for _, tc := range cases {
		if got := FormatNumber(tc.in); got != tc.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatKSTUnix(t *testing.T) {
	// 2023-11-14 22:13:20 UTC = 2023-11-15 07:13:20 KST
	got := FormatKSTUnix(1700000000)
	want := "2023-11-15 07:13:20"
	if got != want {
		t.Errorf("FormatKSTUnix = %q, want %q", got, want)
	}
}

func TestFormatKST_RoundTrip(t *testing.T) {
	ts := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	if got := FormatKST(ts); got != "2024-01-03 00:04:05" {
		t.Errorf("FormatKST = %q", got)
	}
}
