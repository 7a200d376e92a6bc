package ensemble

import (
	"github.com/ensemble-dev/ensemble/internal/app"
	"github.com/ensemble-dev/ensemble/internal/domain"
)

// PhaseChangeEvent reports a transition of the application lifecycle phase.
type PhaseChangeEvent struct {
	Previous Phase
	Current  Phase
	Reason   string
}

// PluginStateEvent reports a state change of a single plugin.
type PluginStateEvent struct {
	Plugin   string
	Previous PluginState
	Current  PluginState
}

// EventHandler receives lifecycle notifications. Handlers are called
// synchronously between hook invocations and should return quickly.
//
// Embed [BaseEventHandler] to get no-op defaults and override only the
// methods you care about.
type EventHandler interface {
	OnPhaseChange(event PhaseChangeEvent)
	OnPluginStateChange(event PluginStateEvent)
}

// BaseEventHandler provides no-op implementations of all EventHandler
// methods.
type BaseEventHandler struct{}

// OnPhaseChange does nothing.
func (BaseEventHandler) OnPhaseChange(event PhaseChangeEvent) {}

// OnPluginStateChange does nothing.
func (BaseEventHandler) OnPluginStateChange(event PluginStateEvent) {}

// emitterWrapper adapts the public EventHandler to the internal emitter
// interface.
type emitterWrapper struct {
	handler EventHandler
}

func (e *emitterWrapper) OnPhaseChange(previous, current app.Phase, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnPhaseChange(PhaseChangeEvent{
		Previous: previous,
		Current:  current,
		Reason:   reason,
	})
}

func (e *emitterWrapper) OnPluginStateChange(plugin string, previous, current domain.PluginState) {
	if e.handler == nil {
		return
	}
	e.handler.OnPluginStateChange(PluginStateEvent{
		Plugin:   plugin,
		Previous: previous,
		Current:  current,
	})
}
