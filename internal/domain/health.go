package domain

// HealthStatus is the health of a single plugin or of the whole application.
// The numeric ordering matters: a larger value is worse, so aggregation picks
// the maximum across plugins.
type HealthStatus int

const (
	StatusUp HealthStatus = iota
	StatusDegraded
	StatusDown
)

// String returns a human-readable representation of the status.
func (s HealthStatus) String() string {
	switch s {
	case StatusUp:
		return "up"
	case StatusDegraded:
		return "degraded"
	case StatusDown:
		return "down"
	default:
		return "unknown"
	}
}

// Worst returns the worse of two statuses (Down > Degraded > Up).
func Worst(a, b HealthStatus) HealthStatus {
	if b > a {
		return b
	}
	return a
}

// PluginHealth is one plugin's contribution to an aggregated health report.
type PluginHealth struct {
	// Status is the plugin's reported health. Plugins without a health
	// hook default to StatusUp.
	Status HealthStatus

	// Message carries optional detail, typically the error text when the
	// plugin's health hook failed.
	Message string
}

// AggregatedHealth is a point-in-time snapshot of every registered plugin's
// health together with the worst-wins overall status.
type AggregatedHealth struct {
	Status  HealthStatus
	Plugins map[string]PluginHealth
}
