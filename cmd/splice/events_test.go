package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dropDatabas3/splice/internal/eventlog"
)

func TestWindow(t *testing.T) {
	evs := make([]eventlog.Event, 5)
	for i := range evs {
		evs[i].Position = eventlog.Position(i + 1)
	}

	got := window(evs, 2, 2)
	assert.Len(t, got, 2)
	assert.Equal(t, eventlog.Position(3), got[0].Position)
	assert.Equal(t, eventlog.Position(4), got[1].Position)

	assert.Len(t, window(evs, 0, 0), 5)
	assert.Empty(t, window(evs, 5, 10))
}
