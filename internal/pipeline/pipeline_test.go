package pipeline_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/f-sync/socialstats/internal/archive"
	"github.com/f-sync/socialstats/internal/pipeline"
)

func TestRunReportsMonotonicProgress(t *testing.T) {
	for _, stepCount := range []int{0, 1, 3, 6, 14} {
		executed := 0
		steps := make([]pipeline.Step, 0, stepCount)
		for index := 0; index < stepCount; index++ {
			steps = append(steps, pipeline.Step{Name: "step", Run: func() { executed++ }})
		}

		var reported []int
		pipeline.Run(nil, steps, func(percent int) { reported = append(reported, percent) })

		assert.Equal(t, stepCount, executed)
		require.NotEmpty(t, reported)
		assert.Equal(t, 100, reported[len(reported)-1])
		hundreds := 0
		for index, percent := range reported {
			if percent == 100 {
				hundreds++
			}
			if index > 0 {
				assert.GreaterOrEqual(t, percent, reported[index-1])
			}
		}
		assert.Equal(t, 1, hundreds, "step count %d", stepCount)
	}
}

func TestStepPercent(t *testing.T) {
	testCases := []struct {
		completed int
		total     int
		expected  int
	}{
		{completed: 1, total: 6, expected: 17},
		{completed: 3, total: 6, expected: 50},
		{completed: 6, total: 6, expected: 100},
		{completed: 1, total: 3, expected: 33},
		{completed: 2, total: 3, expected: 67},
		{completed: 299, total: 300, expected: 99},
		{completed: 0, total: 0, expected: 100},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.expected, pipeline.StepPercent(testCase.completed, testCase.total), "%d/%d", testCase.completed, testCase.total)
	}
}

type likesDocument struct {
	Likes *[]struct {
		Title string `json:"title"`
	} `json:"likes_media_likes"`
}

func buildLikeCount(document likesDocument) (int, error) {
	if document.Likes == nil {
		return 0, archive.MissingKey("likes_media_likes")
	}
	return len(*document.Likes), nil
}

func TestLoad(t *testing.T) {
	core, observedLogs := observer.New(zapcore.WarnLevel)
	files := archive.FromContents(map[string]string{
		"ig/likes/liked_posts.json":    `{"likes_media_likes":[{"title":"a"},{"title":"b"}]}`,
		"ig/likes/liked_comments.json": `{"something_else":[]}`,
		"ig/broken.json":               `{"likes_media_likes":[`,
	})
	collector := pipeline.NewCollector(files, zap.New(core))

	count := pipeline.Load[likesDocument, int](collector, "liked_posts.json", archive.DecodeJSON, buildLikeCount)
	require.NotNil(t, count)
	assert.Equal(t, 2, *count)

	assert.Nil(t, pipeline.Load[likesDocument, int](collector, "absent.json", archive.DecodeJSON, buildLikeCount))
	assert.Nil(t, pipeline.Load[likesDocument, int](collector, "liked_comments.json", archive.DecodeJSON, buildLikeCount))
	assert.Nil(t, pipeline.Load[likesDocument, int](collector, "broken.json", archive.DecodeJSON, buildLikeCount))

	recorded := collector.Errors()
	require.Len(t, recorded, 2)
	assert.Equal(t, "ig/likes/liked_comments.json", recorded[0].Path)
	assert.True(t, errors.Is(recorded[0].Err, archive.ErrUnexpectedShape))
	assert.Contains(t, recorded[0].Error, "likes_media_likes")
	assert.Equal(t, "ig/broken.json", recorded[1].Path)
	assert.Equal(t, 2, observedLogs.Len())

	metadata := collector.Metadata(time.Unix(0, 0))
	assert.Equal(t, 3, metadata.FileCount)
	assert.Len(t, metadata.Errors, 2)
}

func TestDecodeRequired(t *testing.T) {
	files := archive.FromContents(map[string]string{"data/follower.js": `window.YTD.follower.part0 = []`})
	collector := pipeline.NewCollector(files, nil)

	followers, followerPath, found := pipeline.DecodeRequired[[]any](collector, "follower.js", archive.DecodeAssignedJSON)
	require.True(t, found)
	assert.Equal(t, "data/follower.js", followerPath)
	assert.Empty(t, followers)

	_, _, found = pipeline.DecodeRequired[[]any](collector, "following.js", archive.DecodeAssignedJSON)
	assert.False(t, found)

	recorded := collector.Errors()
	require.Len(t, recorded, 1)
	assert.Equal(t, "following.js", recorded[0].Path)
	assert.ErrorIs(t, recorded[0].Err, archive.ErrFileNotFound)
}
