package server

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f-sync/socialstats/internal/archive"
	"github.com/f-sync/socialstats/internal/engine"
	"github.com/f-sync/socialstats/internal/pipeline"
	"github.com/f-sync/socialstats/internal/twitter"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := newSessionStore()

	created := store.Create("analysis-1", "export.zip")
	assert.Equal(t, AnalysisStatusRunning, created.Status)
	assert.Equal(t, 0, created.Progress)
	assert.NotNil(t, created.Errors)

	store.RecordProgress("analysis-1", 40)
	store.RecordProgress("analysis-1", 20)
	snapshot, exists := store.Snapshot("analysis-1")
	require.True(t, exists)
	assert.Equal(t, 40, snapshot.Progress)

	_, status, exists := store.Report("analysis-1")
	require.True(t, exists)
	assert.Equal(t, AnalysisStatusRunning, status)

	fileErrors := []pipeline.FileError{{Path: "follower.js", Error: "file not found"}}
	store.Complete("analysis-1", engine.Report{
		Platform: archive.PlatformTwitter,
		Twitter:  &twitter.Result{Metadata: pipeline.Metadata{Errors: fileErrors}},
	})
	store.RecordProgress("analysis-1", 50)

	snapshot, _ = store.Snapshot("analysis-1")
	assert.Equal(t, AnalysisStatusCompleted, snapshot.Status)
	assert.Equal(t, 100, snapshot.Progress)
	assert.Equal(t, archive.PlatformTwitter, snapshot.Platform)
	assert.Equal(t, fileErrors, snapshot.Errors)

	report, status, exists := store.Report("analysis-1")
	require.True(t, exists)
	assert.Equal(t, AnalysisStatusCompleted, status)
	assert.Equal(t, archive.PlatformTwitter, report.Platform)

	assert.True(t, store.Delete("analysis-1"))
	assert.False(t, store.Delete("analysis-1"))
	_, exists = store.Snapshot("analysis-1")
	assert.False(t, exists)
}

func TestSessionStoreFail(t *testing.T) {
	store := newSessionStore()
	store.Create("analysis-2", "notes.zip")
	store.Fail("analysis-2", engine.Report{Platform: archive.PlatformUnknown}, errors.New("unrecognized"))

	snapshot, exists := store.Snapshot("analysis-2")
	require.True(t, exists)
	assert.Equal(t, AnalysisStatusFailed, snapshot.Status)
	assert.Equal(t, "unrecognized", snapshot.Failure)
	assert.Empty(t, snapshot.Errors)

	_, status, exists := store.Report("analysis-2")
	require.True(t, exists)
	assert.Equal(t, AnalysisStatusFailed, status)

	store.Complete("missing", engine.Report{})
	_, exists = store.Snapshot("missing")
	assert.False(t, exists)
}
