package main

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupLogging(t *testing.T) {
	saved := log.Logger
	t.Cleanup(func() { log.Logger = saved })

	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"info", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			setupLogging(tt.level)
			if got := log.Logger.GetLevel(); got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}
