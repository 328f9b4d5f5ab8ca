package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListOptions_Normalize(t *testing.T) {
	tests := []struct {
		name  string
		input ListOptions
		want  ListOptions
	}{
		{"valid", ListOptions{Limit: 20, Offset: 40}, ListOptions{Limit: 20, Offset: 40}},
		{"zero limit", ListOptions{}, ListOptions{Limit: DefaultPageSize}},
		{"negative limit", ListOptions{Limit: -1}, ListOptions{Limit: DefaultPageSize}},
		{"limit above max", ListOptions{Limit: 10_000}, ListOptions{Limit: MaxPageSize}},
		{"negative offset", ListOptions{Limit: 5, Offset: -3}, ListOptions{Limit: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.input
			opts.Normalize()
			assert.Equal(t, tt.want, opts)
		})
	}
}

func TestNewPage(t *testing.T) {
	p := NewPage([]string{"a", "b"}, 5, ListOptions{Limit: 2, Offset: 0})
	assert.True(t, p.HasMore)
	assert.Equal(t, 5, p.Total)

	p = NewPage([]string{"e"}, 5, ListOptions{Limit: 2, Offset: 4})
	assert.False(t, p.HasMore)

	empty := NewPage[string](nil, 0, ListOptions{Limit: 2})
	assert.NotNil(t, empty.Items)
	assert.False(t, empty.HasMore)
}
