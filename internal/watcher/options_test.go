package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions_Defaults(t *testing.T) {
	opts := Options{}
	opts.setDefaults()

	assert.True(t, opts.IgnoreHidden, "Should ignore hidden files by default")
	assert.Equal(t, 100*time.Millisecond, opts.SettleDelay)
	assert.Contains(t, opts.IgnorePatterns, ".DS_Store")
	assert.Contains(t, opts.IgnorePatterns, "*.tmp")
}

func TestOptions_CustomValues(t *testing.T) {
	opts := Options{
		IgnoreHidden:   false,
		SettleDelay:    200 * time.Millisecond,
		IgnorePatterns: []string{"*.bak"},
	}
	opts.setDefaults()

	assert.False(t, opts.IgnoreHidden, "Custom ignore hidden should be preserved")
	assert.Equal(t, 200*time.Millisecond, opts.SettleDelay)
	assert.Equal(t, []string{"*.bak"}, opts.IgnorePatterns)
}

func TestOptions_ShouldIgnore(t *testing.T) {
	opts := Options{}
	opts.setDefaults()

	tests := []struct {
		name   string
		path   string
		expect bool
	}{
		{"hidden file", "/imports/.consult.json", true},
		{"hidden directory", "/imports/.git/config", true},
		{"DS_Store", "/imports/.DS_Store", true},
		{"tmp file", "/imports/consult.json.tmp", true},
		{"editor backup", "/imports/consult.json~", true},
		{"normal file", "/imports/consult.json", false},
		{"nested file", "/imports/2026/10/consult.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, opts.shouldIgnore(tt.path))
		})
	}
}

func TestOptions_ShouldIgnore_NoIgnoreHidden(t *testing.T) {
	opts := Options{IgnorePatterns: []string{}}
	opts.setDefaults()

	assert.False(t, opts.shouldIgnore("/imports/.hidden"), "Should not ignore hidden when disabled")
}

func TestOptions_Accepts(t *testing.T) {
	opts := Options{Extensions: []string{".json"}}

	assert.True(t, opts.accepts("/imports/consult.json"))
	assert.True(t, opts.accepts("/imports/CONSULT.JSON"))
	assert.False(t, opts.accepts("/imports/notes.txt"))
	assert.False(t, opts.accepts("/imports/json"))

	all := Options{}
	assert.True(t, all.accepts("/imports/notes.txt"))
}
