package weather

// DisplayWindSpeed converts a provider wind speed to display units.
// Metric requests come back in m/s and are converted to km/h; imperial
// requests already arrive in mph and pass through. Inputs are not
// sanitized.
func DisplayWindSpeed(v float64, u Units) float64 {
	if u == UnitsMetric {
		return v * 3.6
	}
	return v
}
