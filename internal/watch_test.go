package internal

import (
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
)

func TestIsManifestEvent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "a.contracts.yaml", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "dir/a.contracts.yaml", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "a.contracts.yaml", Op: fsnotify.Remove}, false},
		{fsnotify.Event{Name: "a.yaml", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: ".ccheck.yaml", Op: fsnotify.Write}, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, isManifestEvent(tc.event), tc.event.String())
	}
}
