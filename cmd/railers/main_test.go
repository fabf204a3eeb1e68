package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/railers/internal/hotkeys"
	"github.com/1broseidon/railers/internal/keyhook"
	"github.com/1broseidon/railers/internal/keys"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeHotkeySource struct {
	registerErr error
	closed      int
}

func (f *fakeHotkeySource) Register(keys.Combo, func(hotkeys.Event)) error { return f.registerErr }
func (f *fakeHotkeySource) Run(context.Context)                            {}
func (f *fakeHotkeySource) Close() error {
	f.closed++
	return nil
}

type fakeKeySource struct {
	startErr error
	closed   int
}

func (f *fakeKeySource) Start(func(keyhook.Event)) error { return f.startErr }
func (f *fakeKeySource) Run(context.Context)             {}
func (f *fakeKeySource) Close() error {
	f.closed++
	return nil
}

func TestStartHotkeyClosesSourceOnRegisterFailure(t *testing.T) {
	combo := keys.Combo{Mods: keys.ModShift, Key: keys.F10}

	src := &fakeHotkeySource{registerErr: errors.New("BadAccess")}
	if startHotkey(src, combo, func(hotkeys.Event) {}, discard) {
		t.Fatalf("startHotkey should fail when Register fails")
	}
	if src.closed != 1 {
		t.Fatalf("Close called %d times, want 1", src.closed)
	}

	ok := &fakeHotkeySource{}
	if !startHotkey(ok, combo, func(hotkeys.Event) {}, discard) {
		t.Fatalf("startHotkey should succeed")
	}
	if ok.closed != 0 {
		t.Fatalf("a registered source must stay open for Run")
	}
}

func TestStartHookClosesSourceOnStartFailure(t *testing.T) {
	hook := &fakeKeySource{startErr: errors.New("no keycodes")}
	if startHook(hook, func(keyhook.Event) {}, discard) {
		t.Fatalf("startHook should fail when Start fails")
	}
	if hook.closed != 1 {
		t.Fatalf("Close called %d times, want 1", hook.closed)
	}

	ok := &fakeKeySource{}
	if !startHook(ok, func(keyhook.Event) {}, discard) {
		t.Fatalf("startHook should succeed")
	}
	if ok.closed != 0 {
		t.Fatalf("a started hook must stay open for Run")
	}
}
