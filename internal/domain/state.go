package domain

// PluginState is the lifecycle state tag of a single registered plugin.
// It is mutated only by the lifecycle manager as hooks complete.
type PluginState int

const (
	StateRegistered PluginState = iota
	StateInitialized
	StateStarted
	StateStopped
	StateFailed
)

// String returns a human-readable representation of the state.
func (s PluginState) String() string {
	switch s {
	case StateRegistered:
		return "Registered"
	case StateInitialized:
		return "Initialized"
	case StateStarted:
		return "Started"
	case StateStopped:
		return "Stopped"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}
