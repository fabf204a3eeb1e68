package keys

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Key
		wantErr bool
	}{
		{in: "f", want: F},
		{in: "F", want: F},
		{in: "Return", want: Return},
		{in: "enter", want: Return},
		{in: " space ", want: Space},
		{in: "F10", want: F10},
		{in: "f12", want: F12},
		{in: "7", want: Num7},
		{in: "ctrl", want: Control},
		{in: "", wantErr: true},
		{in: "hyper", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromRune(t *testing.T) {
	tests := []struct {
		r      rune
		want   Key
		wantOK bool
	}{
		{'q', Q, true},
		{'Q', Q, true},
		{'0', Num0, true},
		{'9', Num9, true},
		{' ', Unknown, false},
		{'é', Unknown, false},
	}
	for _, tt := range tests {
		got, ok := FromRune(tt.r)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("FromRune(%q) = (%v, %v), want (%v, %v)", tt.r, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestVirtualKeys(t *testing.T) {
	tests := []struct {
		key Key
		vk  uint16
	}{
		{F, 0x46},
		{Return, 0x0D},
		{Space, 0x20},
		{F10, 0x79},
		{Num1, 0x31},
	}
	for _, tt := range tests {
		if got := tt.key.VirtualKey(); got != tt.vk {
			t.Errorf("%v.VirtualKey() = %#x, want %#x", tt.key, got, tt.vk)
		}
		if got := FromVirtualKey(tt.vk); got != tt.key {
			t.Errorf("FromVirtualKey(%#x) = %v, want %v", tt.vk, got, tt.key)
		}
	}

	if got := FromVirtualKey(0xA1); got != Shift {
		t.Errorf("FromVirtualKey(VK_RSHIFT) = %v, want Shift", got)
	}
	if got := FromVirtualKey(0xFF); got != Unknown {
		t.Errorf("FromVirtualKey(0xFF) = %v, want Unknown", got)
	}
}

func TestKeysyms(t *testing.T) {
	if got := F.Keysym(); got != "f" {
		t.Errorf("F.Keysym() = %q, want f", got)
	}
	if got := Backspace.Keysym(); got != "BackSpace" {
		t.Errorf("Backspace.Keysym() = %q, want BackSpace", got)
	}
}

func TestNamesRoundTrip(t *testing.T) {
	names := Names()
	if len(names) != int(Super) {
		t.Fatalf("Names() returned %d names, want %d", len(names), int(Super))
	}
	for _, name := range names {
		k, err := Parse(name)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", name, err)
		}
		if k.String() != name {
			t.Errorf("Parse(%q).String() = %q", name, k.String())
		}
	}
}

func TestParseCombo(t *testing.T) {
	tests := []struct {
		in      string
		want    Combo
		str     string
		xseq    string
		winMods uint32
		wantErr bool
	}{
		{
			in:      "Shift-F10",
			want:    Combo{Mods: ModShift, Key: F10},
			str:     "Shift-F10",
			xseq:    "shift-F10",
			winMods: 0x0004,
		},
		{
			in:      "alt+ctrl+h",
			want:    Combo{Mods: ModAlt | ModControl, Key: H},
			str:     "Ctrl-Alt-H",
			xseq:    "control-mod1-h",
			winMods: 0x0003,
		},
		{
			in:   "F9",
			want: Combo{Key: F9},
			str:  "F9",
			xseq: "F9",
		},
		{in: "", wantErr: true},
		{in: "Shift", wantErr: true},
		{in: "F-Return", wantErr: true},
		{in: "Shift-nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCombo(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCombo(%q) expected error, got %+v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCombo(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseCombo(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if s := got.String(); s != tt.str {
				t.Errorf("String() = %q, want %q", s, tt.str)
			}
			if s := got.XSequence(); s != tt.xseq {
				t.Errorf("XSequence() = %q, want %q", s, tt.xseq)
			}
			if m := got.WinModifiers(); m != tt.winMods {
				t.Errorf("WinModifiers() = %#x, want %#x", m, tt.winMods)
			}
		})
	}
}
