package httpmetrics

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/trainings", "/trainings"},
		{"/users/5f0c1c1e-8a4b-4c7e-9d2a-0b1b2c3d4e5f", "/users/{id}"},
		{"/trainings/availability/12", "/trainings/availability/{id}"},
		{"/notifications/5f0c1c1e-8a4b-4c7e-9d2a-0b1b2c3d4e5f/extra", "/notifications/{id}/extra"},
		{"/users/65a1f0c2b3d4e5f6a7b8c9d0", "/users/{id}"},
		{"/users/trainer1", "/users/trainer1"},
	}

	for _, tc := range cases {
		if got := NormalizePath(tc.in); got != tc.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
