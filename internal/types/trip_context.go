package types

// AlertSeverity ranks an active alert. Order matters: comparisons use >=.
type AlertSeverity int

const (
	SeverityAdvisory AlertSeverity = iota
	SeverityWatch
	SeverityHigh
	SeveritySevere
)

// Alert is a single active weather or civil alert.
type Alert struct {
	Event    string        `json:"event"`
	Severity AlertSeverity `json:"severity"`
}

// WeatherInfo is the current weather classification used for candidate
// filtering. Condition is a free-form string from the provider.
type WeatherInfo struct {
	Condition   string  `json:"condition"`
	TemperatureC float64 `json:"temperature_c"`
	UVIndex     float64 `json:"uv_index"`
	// AirQualityScore is a 0-100 quality score, higher is better.
	AirQualityScore int `json:"air_quality_score"`
}

// TravelTimeMatrix maps origin attraction id -> destination attraction id ->
// travel minutes. Directional and possibly sparse; absent entries are valid.
type TravelTimeMatrix map[string]map[string]int

// Minutes looks up the directional travel time between two attractions.
func (m TravelTimeMatrix) Minutes(fromID, toID string) (int, bool) {
	if m == nil {
		return 0, false
	}
	row, ok := m[fromID]
	if !ok {
		return 0, false
	}
	mins, ok := row[toID]
	if !ok || mins <= 0 {
		return 0, false
	}
	return mins, true
}

// ContextBias records how the context snapshot should skew candidate
// selection downstream.
type ContextBias string

const (
	BiasNone   ContextBias = "none"
	BiasIndoor ContextBias = "indoor-biased"
	BiasMixed  ContextBias = "mixed-bias"
)

// ContextSnapshot bundles the weather, alert and travel-time data fetched once
// per request. Read-only after construction; partial data is valid.
type ContextSnapshot struct {
	Weather     WeatherInfo      `json:"weather"`
	Alerts      []Alert          `json:"alerts"`
	TravelTimes TravelTimeMatrix `json:"travel_times,omitempty"`
}

// NeutralSnapshot is the degraded default used when every context provider
// fails: mild clear weather, no alerts, empty matrix.
func NeutralSnapshot() ContextSnapshot {
	return ContextSnapshot{
		Weather: WeatherInfo{
			Condition:       "clear",
			TemperatureC:    24,
			UVIndex:         4,
			AirQualityScore: 75,
		},
	}
}

// HasHighSeverityAlert reports whether any active alert is ranked high or
// above.
func (s ContextSnapshot) HasHighSeverityAlert() bool {
	for _, a := range s.Alerts {
		if a.Severity >= SeverityHigh {
			return true
		}
	}
	return false
}
