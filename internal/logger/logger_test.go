package logger

import (
	"context"
	"testing"
)

func TestNewLogger_Environments(t *testing.T) {
	tests := []struct {
		env     string
		wantErr bool
	}{
		{"prod", false},
		{"local", false},
		{"dev", false},
		{"docker", true},
		{"", true},
	}

	for _, tc := range tests {
		t.Run(tc.env, func(t *testing.T) {
			_, err := NewLogger(tc.env)
			if (err != nil) != tc.wantErr {
				t.Errorf("NewLogger(%q) error = %v, wantErr %v", tc.env, err, tc.wantErr)
			}
		})
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	if _, err := NewLogger("local", "warn"); err != nil {
		t.Errorf("valid level override rejected: %v", err)
	}
	if _, err := NewLogger("local", "loud"); err == nil {
		t.Error("invalid level override accepted")
	}
}

func TestFromContext_Fallback(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("FromContext must never return nil")
	}
}
