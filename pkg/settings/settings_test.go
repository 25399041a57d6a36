package settings

import (
	"testing"
)

func TestNewCliParams(t *testing.T) {
	got := NewCliParams()
	want := Run{Host: HostCLI, ExitOnError: true}
	if *got != want {
		t.Errorf("NewCliParams() = %+v, want %+v", got, want)
	}
}

func TestRunInteractive(t *testing.T) {
	tests := []struct {
		name string
		run  *Run
		want bool
	}{
		{name: "nil", run: nil, want: false},
		{name: "cli", run: &Run{Host: HostCLI}, want: false},
		{name: "server", run: &Run{Host: HostServer}, want: false},
		{name: "editor", run: &Run{Host: HostEditor}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.run.Interactive(); got != tt.want {
				t.Errorf("Interactive() = %v, want %v", got, tt.want)
			}
		})
	}
}
