package revenue

import "github.com/shopspring/decimal"

// pointsToBaseRate converts secondary-platform points to base currency.
var pointsToBaseRate = decimal.NewFromFloat(0.05)

// PointsProvider supplies the last captured points balance. The balance
// is written by the external session-capture tool; this package never
// fetches it over the network.
type PointsProvider interface {
	Points() float64
}

// PointsSource converts the captured points balance into base currency.
// It never fails; an absent balance is treated as zero.
type PointsSource struct {
	provider PointsProvider
}

// NewPointsSource creates a points-backed secondary revenue source.
func NewPointsSource(provider PointsProvider) *PointsSource {
	return &PointsSource{provider: provider}
}

// ValueInBase returns the current points balance in base currency.
func (s *PointsSource) ValueInBase() float64 {
	if s.provider == nil {
		return 0
	}
	points := s.provider.Points()
	if points <= 0 {
		return 0
	}
	value, _ := decimal.NewFromFloat(points).Mul(pointsToBaseRate).Float64()
	return value
}
