package models

import (
	"testing"
	"time"
)

func TestAssessment_Available(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name       string
		assessment Assessment
		want       bool
	}{
		{
			name:       "visible with no window",
			assessment: Assessment{Visible: true},
			want:       true,
		},
		{
			name:       "hidden",
			assessment: Assessment{Visible: false},
			want:       false,
		},
		{
			name:       "inside window",
			assessment: Assessment{Visible: true, OpenAt: &past, CloseAt: &future},
			want:       true,
		},
		{
			name:       "not yet open",
			assessment: Assessment{Visible: true, OpenAt: &future},
			want:       false,
		},
		{
			name:       "already closed",
			assessment: Assessment{Visible: true, CloseAt: &past},
			want:       false,
		},
		{
			name:       "open-ended after open time",
			assessment: Assessment{Visible: true, OpenAt: &past},
			want:       true,
		},
		{
			name:       "hidden wins over valid window",
			assessment: Assessment{Visible: false, OpenAt: &past, CloseAt: &future},
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.assessment.Available(now); got != tt.want {
				t.Errorf("Available() = %v, want %v", got, tt.want)
			}
		})
	}
}
