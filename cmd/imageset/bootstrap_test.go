package main

import (
	"testing"

	"github.com/jamesainslie/imageset/pkg/imageset/config"
	"github.com/jamesainslie/imageset/pkg/imageset/logging"
)

func TestParseRotationConfig(t *testing.T) {
	tests := []struct {
		name     string
		input    config.RotationConfig
		expected logging.RotationConfig
	}{
		{
			name:     "default values",
			input:    config.RotationConfig{MaxSize: "10MiB", MaxAge: 30, MaxBackups: 5, Daily: true},
			expected: logging.RotationConfig{MaxSize: 10 * 1024 * 1024, MaxAge: 30, MaxBackups: 5, Daily: true},
		},
		{
			name:     "decimal units",
			input:    config.RotationConfig{MaxSize: "1GB", MaxAge: 7, MaxBackups: 3},
			expected: logging.RotationConfig{MaxSize: 1000 * 1000 * 1000, MaxAge: 7, MaxBackups: 3},
		},
		{
			name:     "empty max_size uses default",
			input:    config.RotationConfig{MaxAge: 14, MaxBackups: 2, Daily: true},
			expected: logging.RotationConfig{MaxSize: 10 * 1024 * 1024, MaxAge: 14, MaxBackups: 2, Daily: true},
		},
		{
			name:     "invalid max_size uses default",
			input:    config.RotationConfig{MaxSize: "invalid", MaxAge: 21, MaxBackups: 4},
			expected: logging.RotationConfig{MaxSize: 10 * 1024 * 1024, MaxAge: 21, MaxBackups: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseRotationConfig(tt.input)
			if result != tt.expected {
				t.Errorf("parseRotationConfig() = %+v, want %+v", result, tt.expected)
			}
		})
	}
}

func TestConsoleLevel(t *testing.T) {
	tests := []struct {
		verbose, quiet bool
		want           string
	}{
		{false, false, "info"},
		{true, false, "debug"},
		{false, true, "error"},
		{true, true, "error"},
	}

	for _, tt := range tests {
		if got := consoleLevel(tt.verbose, tt.quiet); got != tt.want {
			t.Errorf("consoleLevel(%t, %t) = %q, want %q", tt.verbose, tt.quiet, got, tt.want)
		}
	}
}
