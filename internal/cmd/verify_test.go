package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRateLimit(t *testing.T) {
	tests := []struct {
		name     string
		flagSet  bool
		flag     float64
		manifest float64
		want     float64
	}{
		{name: "unset falls back to manifest", flagSet: false, flag: 0, manifest: 5, want: 5},
		{name: "unset with no manifest limit", flagSet: false, flag: 0, manifest: 0, want: 0},
		{name: "explicit flag wins", flagSet: true, flag: 2, manifest: 5, want: 2},
		{name: "explicit zero disables manifest limit", flagSet: true, flag: 0, manifest: 5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveRateLimit(tt.flagSet, tt.flag, tt.manifest))
		})
	}
}
