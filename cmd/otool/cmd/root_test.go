package cmd

import (
	"io"
	"testing"

	"github.com/spf13/viper"
	"github.com/vbauerster/mpb/v8"
)

func TestColorEnv(t *testing.T) {
	tests := []struct {
		name   string
		cliclr string
		force  string
		want   bool
	}{
		{"CLICOLOR alone", "1", "", false},
		{"CLICOLOR_FORCE", "", "1", true},
		{"CLICOLOR_FORCE off", "1", "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CLICOLOR", tt.cliclr)
			t.Setenv("CLICOLOR_FORCE", tt.force)
			if got := viper.GetBool("color"); got != tt.want {
				t.Errorf("color = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStopProgress(t *testing.T) {
	stopProgress(nil, nil, true)

	p := mpb.New(mpb.WithOutput(io.Discard))
	bar := p.New(10, mpb.BarStyle())
	bar.Increment()
	stopProgress(p, bar, true)
	if !bar.Aborted() {
		t.Error("an unfinished bar should be aborted")
	}

	p = mpb.New(mpb.WithOutput(io.Discard))
	bar = p.New(1, mpb.BarStyle())
	bar.Increment()
	stopProgress(p, bar, false)
	if bar.Aborted() || !bar.Completed() {
		t.Error("a finished bar should complete, not abort")
	}
}
