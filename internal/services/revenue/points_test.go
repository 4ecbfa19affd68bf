package revenue

import "testing"

type staticPoints float64

func (p staticPoints) Points() float64 { return float64(p) }

func TestPointsSourceValueInBase(t *testing.T) {
	tests := []struct {
		name   string
		points float64
		want   float64
	}{
		{"Zero", 0, 0},
		{"Negative", -10, 0},
		{"Whole", 100, 5.0},
		{"Fractional", 123, 6.15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewPointsSource(staticPoints(tt.points))
			if got := s.ValueInBase(); got != tt.want {
				t.Errorf("ValueInBase() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPointsSourceNilProvider(t *testing.T) {
	s := NewPointsSource(nil)
	if got := s.ValueInBase(); got != 0 {
		t.Errorf("ValueInBase() = %v, want 0", got)
	}
}
