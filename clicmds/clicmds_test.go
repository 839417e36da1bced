package clicmds

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/visitkit/visitk"
)

func TestVisitLocationsResolvePaths(t *testing.T) {
	cfg := &visitk.Config{URL: "http://example.com/app/", Paths: []string{"two", "/three?x=1"}}
	locations, err := visitLocations(cfg)
	require.NoError(t, err)
	require.Len(t, locations, 3)
	assert.Equal(t, "http://example.com/app/", locations[0].String())
	assert.Equal(t, "http://example.com/app/two", locations[1].String())
	assert.Equal(t, "http://example.com/three?x=1", locations[2].String())
}

func TestVisitGraph(t *testing.T) {
	records := []*visitk.VisitRecord{
		{Location: "http://example.com/", Strategy: "cold_boot", State: visitk.VisitCompleted},
		{Location: "http://example.com/two", Strategy: "script", State: visitk.VisitCompleted},
		{Location: "http://example.com/broken", Strategy: "script", State: visitk.VisitFailed},
		{Location: "http://example.com/three", Strategy: "script", State: visitk.VisitCompleted},
	}

	out := visitGraph(records).String()
	assert.True(t, strings.Contains(out, "http://example.com/broken"))
	assert.True(t, strings.Contains(out, "dashed"))
	assert.Equal(t, 3, strings.Count(out, "->"))
}

func TestVisitGraphEmpty(t *testing.T) {
	out := visitGraph(nil).String()
	assert.False(t, strings.Contains(out, "->"))
}
