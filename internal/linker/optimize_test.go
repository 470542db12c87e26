package linker

import "testing"

func TestParseOptLevel(t *testing.T) {
	tests := []struct {
		in   string
		want OptLevel
	}{
		{"0", OptNone},
		{"1", OptLess},
		{"2", OptDefault},
		{"3", OptAggressive},
		{"s", OptSize},
		{"z", OptSizeMin},
	}
	for _, tt := range tests {
		got, err := ParseOptLevel(tt.in)
		if err != nil {
			t.Errorf("ParseOptLevel(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOptLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "4", "O2", "fast"} {
		if _, err := ParseOptLevel(bad); err == nil {
			t.Errorf("ParseOptLevel(%q): expected error", bad)
		}
	}
}

func TestPipelineFor(t *testing.T) {
	tests := []struct {
		level OptLevel
		want  string
	}{
		// Nothing useful loads at true O0, so it aliases to O1.
		{OptNone, "default<O1>,dce"},
		{OptLess, "default<O1>,dce"},
		{OptDefault, "default<O2>,dce"},
		{OptAggressive, "default<O3>,dce"},
		{OptSize, "default<Os>,dce"},
		{OptSizeMin, "default<Oz>,dce"},
	}
	for _, tt := range tests {
		if got := pipelineFor(tt.level); got != tt.want {
			t.Errorf("pipelineFor(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}
