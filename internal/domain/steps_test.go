package domain

import (
	"testing"
	"time"
)

func TestTimelineResolve(t *testing.T) {
	tests := []struct {
		name string
		in   Timeline
		want Timeline
	}{
		{
			name: "zero value keeps an unpaced run",
			in:   Timeline{},
			want: Timeline{MaxSteps: DefaultMaxSteps, TickDelay: 0},
		},
		{
			name: "negative values",
			in:   Timeline{MaxSteps: -3, TickDelay: -time.Second},
			want: Timeline{MaxSteps: DefaultMaxSteps, TickDelay: 0},
		},
		{
			name: "explicit values pass through",
			in:   Timeline{MaxSteps: 4, TickDelay: 2 * time.Second},
			want: Timeline{MaxSteps: 4, TickDelay: 2 * time.Second},
		},
		{
			name: "default timeline",
			in:   DefaultTimeline(),
			want: Timeline{MaxSteps: DefaultMaxSteps, TickDelay: DefaultTickDelay},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Resolve(); got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
