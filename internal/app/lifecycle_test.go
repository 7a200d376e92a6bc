package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ensemble-dev/ensemble/internal/domain"
	"github.com/ensemble-dev/ensemble/internal/graph"
	"github.com/ensemble-dev/ensemble/internal/ports"
	"github.com/ensemble-dev/ensemble/internal/registry"
)

// recorder tracks hook invocations across plugins in call order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) count(call string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.calls...)
}

// hookPlugin implements all four capabilities with injectable failures.
type hookPlugin struct {
	meta     domain.Metadata
	rec      *recorder
	initErr  error
	startErr error
	stopErr  error
}

func (p *hookPlugin) Metadata() domain.Metadata { return p.meta }

func (p *hookPlugin) Initialize(ctx context.Context, pctx *ports.Context) error {
	p.rec.record(p.meta.Name + ":init")
	return p.initErr
}

func (p *hookPlugin) Start(ctx context.Context) error {
	p.rec.record(p.meta.Name + ":start")
	return p.startErr
}

func (p *hookPlugin) Stop(ctx context.Context) error {
	p.rec.record(p.meta.Name + ":stop")
	return p.stopErr
}

// barePlugin has metadata and no hooks at all.
type barePlugin struct {
	meta domain.Metadata
}

func (p barePlugin) Metadata() domain.Metadata { return p.meta }

// mockEmitter tracks phase change events.
type mockEmitter struct {
	mu     sync.Mutex
	phases []Phase
	states []string
}

func (m *mockEmitter) OnPhaseChange(previous, current Phase, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phases = append(m.phases, current)
}

func (m *mockEmitter) OnPluginStateChange(plugin string, previous, current domain.PluginState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, plugin+":"+current.String())
}

func newManager(t *testing.T, emitter EventEmitter, plugins ...ports.Plugin) (*Manager, *registry.Registry) {
	t.Helper()

	reg := registry.New()
	for _, p := range plugins {
		if err := reg.Register(p); err != nil {
			t.Fatalf("Register(%s) failed: %v", p.Metadata().Name, err)
		}
	}
	if err := reg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	metas := make([]domain.Metadata, 0, reg.Len())
	for _, r := range reg.All() {
		metas = append(metas, r.Meta)
	}
	order, err := graph.Build(metas).TopologicalOrder()
	if err != nil {
		t.Fatalf("TopologicalOrder failed: %v", err)
	}

	return NewManager(Config{
		Registry: reg,
		Order:    order,
		Emitter:  emitter,
	}), reg
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseCreated, "Created"},
		{PhaseInitializing, "Initializing"},
		{PhaseInitialized, "Initialized"},
		{PhaseStarting, "Starting"},
		{PhaseStarted, "Started"},
		{PhaseStopping, "Stopping"},
		{PhaseStopped, "Stopped"},
		{PhaseFailed, "Failed"},
		{Phase(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestInitializeAll(t *testing.T) {
	rec := &recorder{}
	mgr, reg := newManager(t, nil,
		&hookPlugin{meta: domain.Metadata{Name: "log"}, rec: rec},
		&hookPlugin{meta: domain.Metadata{Name: "db", Dependencies: []string{"log"}}, rec: rec},
	)

	if err := mgr.InitializeAll(context.Background()); err != nil {
		t.Fatalf("InitializeAll failed: %v", err)
	}
	if mgr.Phase() != PhaseInitialized {
		t.Errorf("phase = %v, want Initialized", mgr.Phase())
	}

	want := []string{"log:init", "db:init"}
	got := rec.all()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}

	for _, name := range []string{"log", "db"} {
		r, _ := reg.Get(name)
		if r.State != domain.StateInitialized {
			t.Errorf("%s state = %v, want Initialized", name, r.State)
		}
	}
}

func TestInitializeAllWrongPhase(t *testing.T) {
	rec := &recorder{}
	mgr, _ := newManager(t, nil, &hookPlugin{meta: domain.Metadata{Name: "a"}, rec: rec})

	if err := mgr.InitializeAll(context.Background()); err != nil {
		t.Fatalf("first InitializeAll failed: %v", err)
	}
	err := mgr.InitializeAll(context.Background())
	if !errors.Is(err, domain.ErrInvalidPhase) {
		t.Fatalf("second InitializeAll error = %v, want ErrInvalidPhase", err)
	}
}

func TestStartAllRunsInitializeFirst(t *testing.T) {
	rec := &recorder{}
	mgr, _ := newManager(t, nil,
		&hookPlugin{meta: domain.Metadata{Name: "a"}, rec: rec},
	)

	if err := mgr.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if mgr.Phase() != PhaseStarted {
		t.Errorf("phase = %v, want Started", mgr.Phase())
	}

	want := []string{"a:init", "a:start"}
	got := rec.all()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestStartAllIndependentPlugins(t *testing.T) {
	rec := &recorder{}
	var plugins []ports.Plugin
	names := []string{"p1", "p2", "p3", "p4"}
	for _, n := range names {
		plugins = append(plugins, &hookPlugin{meta: domain.Metadata{Name: n}, rec: rec})
	}
	mgr, _ := newManager(t, nil, plugins...)

	if err := mgr.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if mgr.Phase() != PhaseStarted {
		t.Errorf("phase = %v, want Started", mgr.Phase())
	}
	for _, n := range names {
		if c := rec.count(n + ":start"); c != 1 {
			t.Errorf("%s started %d times, want exactly once", n, c)
		}
	}
}

func TestStartAllFailsFast(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("connection refused")
	mgr, reg := newManager(t, nil,
		&hookPlugin{meta: domain.Metadata{Name: "log"}, rec: rec},
		&hookPlugin{meta: domain.Metadata{Name: "db", Dependencies: []string{"log"}}, rec: rec, startErr: boom},
		&hookPlugin{meta: domain.Metadata{Name: "api", Dependencies: []string{"db"}}, rec: rec},
	)

	err := mgr.StartAll(context.Background())
	var lcErr *domain.PluginLifecycleError
	if !errors.As(err, &lcErr) {
		t.Fatalf("StartAll error = %v, want PluginLifecycleError", err)
	}
	if lcErr.Phase != domain.HookStart {
		t.Errorf("error phase = %q, want start", lcErr.Phase)
	}
	if lcErr.Plugin() != "db" {
		t.Errorf("error plugin = %q, want db", lcErr.Plugin())
	}
	if !errors.Is(err, boom) {
		t.Error("error does not wrap the hook cause")
	}

	if c := rec.count("log:start"); c != 1 {
		t.Errorf("log started %d times, want exactly once before the failure", c)
	}
	if c := rec.count("api:start"); c != 0 {
		t.Errorf("api started %d times, want never", c)
	}
	if mgr.Phase() != PhaseFailed {
		t.Errorf("phase = %v, want Failed", mgr.Phase())
	}
	dbReg, _ := reg.Get("db")
	if dbReg.State != domain.StateFailed {
		t.Errorf("db state = %v, want Failed", dbReg.State)
	}
}

func TestInitializeAllFailsFast(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("bad config")
	mgr, _ := newManager(t, nil,
		&hookPlugin{meta: domain.Metadata{Name: "a"}, rec: rec},
		&hookPlugin{meta: domain.Metadata{Name: "b", Dependencies: []string{"a"}}, rec: rec, initErr: boom},
		&hookPlugin{meta: domain.Metadata{Name: "c", Dependencies: []string{"b"}}, rec: rec},
	)

	err := mgr.InitializeAll(context.Background())
	var lcErr *domain.PluginLifecycleError
	if !errors.As(err, &lcErr) {
		t.Fatalf("InitializeAll error = %v, want PluginLifecycleError", err)
	}
	if lcErr.Phase != domain.HookInitialize || lcErr.Plugin() != "b" {
		t.Errorf("error = %s/%s, want initialize/b", lcErr.Phase, lcErr.Plugin())
	}
	if c := rec.count("c:init"); c != 0 {
		t.Errorf("c initialized %d times after failure, want never", c)
	}
}

func TestStopAllReverseOrder(t *testing.T) {
	rec := &recorder{}
	mgr, _ := newManager(t, nil,
		&hookPlugin{meta: domain.Metadata{Name: "log"}, rec: rec},
		&hookPlugin{meta: domain.Metadata{Name: "db", Dependencies: []string{"log"}}, rec: rec},
		&hookPlugin{meta: domain.Metadata{Name: "api", Dependencies: []string{"db"}}, rec: rec},
	)

	if err := mgr.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if err := mgr.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if mgr.Phase() != PhaseStopped {
		t.Errorf("phase = %v, want Stopped", mgr.Phase())
	}

	want := []string{
		"log:init", "db:init", "api:init",
		"log:start", "db:start", "api:start",
		"api:stop", "db:stop", "log:stop",
	}
	got := rec.all()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
}

func TestStopAllBestEffort(t *testing.T) {
	rec := &recorder{}
	boomA := errors.New("socket already closed")
	boomB := errors.New("flush failed")
	mgr, _ := newManager(t, nil,
		&hookPlugin{meta: domain.Metadata{Name: "a"}, rec: rec, stopErr: boomA},
		&hookPlugin{meta: domain.Metadata{Name: "b", Dependencies: []string{"a"}}, rec: rec, stopErr: boomB},
		&hookPlugin{meta: domain.Metadata{Name: "c", Dependencies: []string{"b"}}, rec: rec},
	)

	if err := mgr.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}

	err := mgr.StopAll(context.Background())
	var lcErr *domain.PluginLifecycleError
	if !errors.As(err, &lcErr) {
		t.Fatalf("StopAll error = %v, want PluginLifecycleError", err)
	}
	if lcErr.Phase != domain.HookStop {
		t.Errorf("error phase = %q, want stop", lcErr.Phase)
	}
	if len(lcErr.Failures) != 2 {
		t.Fatalf("aggregated %d failures, want 2: %v", len(lcErr.Failures), lcErr)
	}
	// Failures are recorded in the order stops were attempted (reverse
	// topological): b before a.
	if lcErr.Failures[0].Plugin != "b" || lcErr.Failures[1].Plugin != "a" {
		t.Errorf("failures = %v, want b then a", lcErr.Failures)
	}
	if !errors.Is(err, boomA) || !errors.Is(err, boomB) {
		t.Error("aggregated error does not wrap both hook causes")
	}

	// Every plugin still got its stop attempt.
	for _, n := range []string{"a", "b", "c"} {
		if c := rec.count(n + ":stop"); c != 1 {
			t.Errorf("%s stopped %d times, want exactly once", n, c)
		}
	}
}

func TestStopAllSkipsUninitialized(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("no disk")
	mgr, _ := newManager(t, nil,
		&hookPlugin{meta: domain.Metadata{Name: "a"}, rec: rec},
		&hookPlugin{meta: domain.Metadata{Name: "b", Dependencies: []string{"a"}}, rec: rec, initErr: boom},
		&hookPlugin{meta: domain.Metadata{Name: "c", Dependencies: []string{"b"}}, rec: rec},
	)

	if err := mgr.InitializeAll(context.Background()); err == nil {
		t.Fatal("InitializeAll succeeded, want failure")
	}

	// Caller-driven cleanup after the failed startup.
	if err := mgr.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	if c := rec.count("a:stop"); c != 1 {
		t.Errorf("a stopped %d times, want once", c)
	}
	// b reached its initialize hook and may hold partial resources: it
	// still gets a stop attempt. c never initialized and must not.
	if c := rec.count("b:stop"); c != 1 {
		t.Errorf("b stopped %d times, want once", c)
	}
	if c := rec.count("c:stop"); c != 0 {
		t.Errorf("c stopped %d times, want never", c)
	}
}

func TestStopAllIdempotent(t *testing.T) {
	rec := &recorder{}
	mgr, _ := newManager(t, nil, &hookPlugin{meta: domain.Metadata{Name: "a"}, rec: rec})

	if err := mgr.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if err := mgr.StopAll(context.Background()); err != nil {
		t.Fatalf("first StopAll failed: %v", err)
	}
	if err := mgr.StopAll(context.Background()); err != nil {
		t.Fatalf("second StopAll failed: %v", err)
	}
	if c := rec.count("a:stop"); c != 1 {
		t.Errorf("a stopped %d times across two StopAll calls, want once", c)
	}
}

func TestPluginsWithoutHooks(t *testing.T) {
	mgr, reg := newManager(t, nil,
		barePlugin{meta: domain.Metadata{Name: "passive"}},
	)

	if err := mgr.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	r, _ := reg.Get("passive")
	if r.State != domain.StateStarted {
		t.Errorf("passive state = %v, want Started", r.State)
	}

	if err := mgr.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if r.State != domain.StateStopped {
		t.Errorf("passive state = %v, want Stopped", r.State)
	}
}

func TestEmitterReceivesPhaseTransitions(t *testing.T) {
	rec := &recorder{}
	emitter := &mockEmitter{}
	mgr, _ := newManager(t, emitter, &hookPlugin{meta: domain.Metadata{Name: "a"}, rec: rec})

	if err := mgr.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if err := mgr.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	want := []Phase{
		PhaseInitializing, PhaseInitialized,
		PhaseStarting, PhaseStarted,
		PhaseStopping, PhaseStopped,
	}
	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	if len(emitter.phases) != len(want) {
		t.Fatalf("phase events = %v, want %v", emitter.phases, want)
	}
	for i := range want {
		if emitter.phases[i] != want[i] {
			t.Fatalf("phase events = %v, want %v", emitter.phases, want)
		}
	}
}

func TestStopAllFromCreatedIsNoop(t *testing.T) {
	rec := &recorder{}
	mgr, _ := newManager(t, nil, &hookPlugin{meta: domain.Metadata{Name: "a"}, rec: rec})

	if err := mgr.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll from Created failed: %v", err)
	}
	if c := rec.count("a:stop"); c != 0 {
		t.Errorf("a stopped %d times without ever initializing, want never", c)
	}
	if mgr.Phase() != PhaseStopped {
		t.Errorf("phase = %v, want Stopped", mgr.Phase())
	}
}
