package remap

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/railers/internal/focus"
	"github.com/1broseidon/railers/internal/keyhook"
	"github.com/1broseidon/railers/internal/keys"
	"github.com/1broseidon/railers/internal/state"
)

type fixedFocus struct {
	mu sync.Mutex
	h  focus.Handles
}

func (f *fixedFocus) Snapshot() focus.Handles {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.h
}

var (
	focused   = focus.Handles{Target: 1, Overlay: 2, Foreground: 1}
	onOverlay = focus.Handles{Target: 1, Overlay: 2, Foreground: 2}
	elsewhere = focus.Handles{Target: 1, Overlay: 2, Foreground: 3}
)

type injected struct {
	key  keys.Key
	down bool
	at   time.Time
}

type recordingInjector struct {
	mu      sync.Mutex
	events  []injected
	downErr error
}

func (r *recordingInjector) KeyDown(k keys.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.downErr != nil {
		return r.downErr
	}
	r.events = append(r.events, injected{key: k, down: true, at: time.Now()})
	return nil
}

func (r *recordingInjector) KeyUp(k keys.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, injected{key: k, down: false, at: time.Now()})
	return nil
}

func (r *recordingInjector) snapshot() []injected {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]injected, len(r.events))
	copy(out, r.events)
	return out
}

func newRemapper(t *testing.T, h focus.Handles, enabled bool) (*Remapper, *state.Shared, *recordingInjector) {
	t.Helper()
	shared := state.NewShared([]keys.Key{keys.F, keys.Return}, enabled)
	inj := &recordingInjector{}
	r, err := New(Config{Substitute: keys.Space, PressDelay: 10 * time.Millisecond}, shared, &fixedFocus{h: h}, inj)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r, shared, inj
}

func press(k keys.Key) keyhook.Event { return keyhook.Event{Key: k, Down: true} }

func TestHandleSynthesizesPressThenRelease(t *testing.T) {
	r, _, inj := newRemapper(t, focused, true)

	if !r.Handle(context.Background(), press(keys.F)) {
		t.Fatalf("Handle() = false, want true")
	}
	got := inj.snapshot()
	if len(got) != 2 {
		t.Fatalf("expected 2 injected events, got %d", len(got))
	}
	if got[0].key != keys.Space || !got[0].down {
		t.Fatalf("first event = %+v, want Space down", got[0])
	}
	if got[1].key != keys.Space || got[1].down {
		t.Fatalf("second event = %+v, want Space up", got[1])
	}
	if gap := got[1].at.Sub(got[0].at); gap < 10*time.Millisecond {
		t.Fatalf("release came %v after press, want >= 10ms", gap)
	}
}

func TestHandleGating(t *testing.T) {
	tests := []struct {
		name    string
		handles focus.Handles
		enabled bool
		ev      keyhook.Event
		want    bool
	}{
		{name: "enabled and focused", handles: focused, enabled: true, ev: press(keys.Return), want: true},
		{name: "disabled", handles: focused, enabled: false, ev: press(keys.F)},
		{name: "overlay focused", handles: onOverlay, enabled: true, ev: press(keys.F)},
		{name: "other window focused", handles: elsewhere, enabled: true, ev: press(keys.F)},
		{name: "release", handles: focused, enabled: true, ev: keyhook.Event{Key: keys.F}},
		{name: "injected", handles: focused, enabled: true, ev: keyhook.Event{Key: keys.F, Down: true, Injected: true}},
		{name: "not a trigger", handles: focused, enabled: true, ev: press(keys.G)},
		{name: "substitute itself", handles: focused, enabled: true, ev: press(keys.Space)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, inj := newRemapper(t, tt.handles, tt.enabled)
			got := r.Handle(context.Background(), tt.ev)
			if got != tt.want {
				t.Fatalf("Handle() = %v, want %v", got, tt.want)
			}
			wantEvents := 0
			if tt.want {
				wantEvents = 2
			}
			if n := len(inj.snapshot()); n != wantEvents {
				t.Fatalf("injected %d events, want %d", n, wantEvents)
			}
		})
	}
}

func TestPerTriggerFlags(t *testing.T) {
	r, shared, inj := newRemapper(t, focused, true)
	flag, _ := shared.RemapFlag(keys.F)
	flag.Set(false)

	if r.Handle(context.Background(), press(keys.F)) {
		t.Fatalf("F disabled but remapped")
	}
	if !r.Handle(context.Background(), press(keys.Return)) {
		t.Fatalf("Return enabled but not remapped")
	}
	if n := len(inj.snapshot()); n != 2 {
		t.Fatalf("injected %d events, want 2", n)
	}
}

func TestCustomTrigger(t *testing.T) {
	r, shared, inj := newRemapper(t, focused, false)
	ctx := context.Background()

	shared.CustomTrigger.Set(keys.Q)
	if r.Handle(ctx, press(keys.Q)) {
		t.Fatalf("custom key remapped while its toggle is off")
	}

	shared.CustomEnabled.Set(true)
	if !r.Handle(ctx, press(keys.Q)) {
		t.Fatalf("custom key not remapped")
	}
	if r.Handle(ctx, press(keys.W)) {
		t.Fatalf("non-custom key remapped")
	}

	shared.CustomTrigger.Clear()
	if r.Handle(ctx, press(keys.Q)) {
		t.Fatalf("cleared custom key remapped")
	}
	if n := len(inj.snapshot()); n != 2 {
		t.Fatalf("injected %d events, want 2", n)
	}
}

func TestPressFailureAbandons(t *testing.T) {
	r, _, inj := newRemapper(t, focused, true)
	inj.downErr = errors.New("blocked by UIPI")

	if r.Handle(context.Background(), press(keys.F)) {
		t.Fatalf("Handle() = true despite press failure")
	}
	if n := len(inj.snapshot()); n != 0 {
		t.Fatalf("expected no release after failed press, got %d events", n)
	}
}

func TestCancelledDelayStillReleases(t *testing.T) {
	shared := state.NewShared([]keys.Key{keys.F}, true)
	inj := &recordingInjector{}
	r, err := New(Config{Substitute: keys.Space, PressDelay: time.Hour}, shared, &fixedFocus{h: focused}, inj)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Handle(ctx, press(keys.F))

	got := inj.snapshot()
	if len(got) != 2 || got[1].down {
		t.Fatalf("expected press and release, got %+v", got)
	}
}

func TestNewRejectsSubstituteTrigger(t *testing.T) {
	shared := state.NewShared([]keys.Key{keys.F, keys.Space}, true)
	if _, err := New(Config{Substitute: keys.Space}, shared, &fixedFocus{}, &recordingInjector{}); err == nil {
		t.Fatalf("expected error when substitute is a trigger")
	}
	if _, err := New(Config{}, shared, &fixedFocus{}, &recordingInjector{}); err == nil {
		t.Fatalf("expected error without substitute")
	}
}

func TestNotifyAndRun(t *testing.T) {
	r, _, inj := newRemapper(t, focused, true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	r.Notify(keyhook.Event{Key: keys.F})
	r.Notify(press(keys.G))
	r.Notify(press(keys.F))

	deadline := time.After(2 * time.Second)
	for len(inj.snapshot()) < 2 {
		select {
		case <-deadline:
			t.Fatalf("worker never synthesized the substitute")
		case <-time.After(2 * time.Millisecond):
		}
	}

	cancel()
	<-done

	got := inj.snapshot()
	want := []bool{true, false}
	var downs []bool
	for _, ev := range got {
		downs = append(downs, ev.down)
	}
	if !reflect.DeepEqual(downs, want) {
		t.Fatalf("down sequence = %v, want %v", downs, want)
	}
}
