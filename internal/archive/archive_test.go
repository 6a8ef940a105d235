package archive_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f-sync/socialstats/internal/archive"
)

func TestResolve(t *testing.T) {
	testCases := []struct {
		name         string
		paths        []string
		pattern      string
		expectedPath string
		expectFound  bool
	}{
		{
			name:         "final segment equals pattern",
			paths:        []string{"export/data/like.js", "export/data/tweets.js"},
			pattern:      "like.js",
			expectedPath: "export/data/like.js",
			expectFound:  true,
		},
		{
			name:         "bare file name at root",
			paths:        []string{"like.js"},
			pattern:      "like.js",
			expectedPath: "like.js",
			expectFound:  true,
		},
		{
			name:         "multi segment pattern matches suffix",
			paths:        []string{"ig/your_instagram_activity/likes/liked_posts.json"},
			pattern:      "likes/liked_posts.json",
			expectedPath: "ig/your_instagram_activity/likes/liked_posts.json",
			expectFound:  true,
		},
		{
			name:        "partial segment does not match",
			paths:       []string{"export/data/unlike.js"},
			pattern:     "like.js",
			expectFound: false,
		},
		{
			name:        "matching is case sensitive",
			paths:       []string{"export/data/Like.js"},
			pattern:     "like.js",
			expectFound: false,
		},
		{
			name:         "ambiguous matches prefer the shortest path",
			paths:        []string{"export/deleted/old/following.js", "export/data/following.js"},
			pattern:      "following.js",
			expectedPath: "export/data/following.js",
			expectFound:  true,
		},
		{
			name:         "equal length matches fall back to lexical order",
			paths:        []string{"b/following.js", "a/following.js"},
			pattern:      "following.js",
			expectedPath: "a/following.js",
			expectFound:  true,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			contents := map[string]string{}
			for _, filePath := range testCase.paths {
				contents[filePath] = "content of " + filePath
			}
			files := archive.FromContents(contents)

			resolvedPath, opener, found := archive.Resolve(files, testCase.pattern)
			require.Equal(t, testCase.expectFound, found)
			if !testCase.expectFound {
				assert.Nil(t, opener)
				return
			}
			assert.Equal(t, testCase.expectedPath, resolvedPath)
			content, err := archive.ReadAll(opener)
			require.NoError(t, err)
			assert.Equal(t, "content of "+testCase.expectedPath, string(content))
		})
	}
}

func TestDecodeAssignedJSON(t *testing.T) {
	testCases := []struct {
		name          string
		content       string
		expectedIDs   []string
		expectedError error
	}{
		{
			name:        "window ytd prefix",
			content:     "window.YTD.follower.part0 = [{\"id\":\"1\"},{\"id\":\"2\"}]",
			expectedIDs: []string{"1", "2"},
		},
		{
			name:        "byte order mark and trailing semicolon",
			content:     "\uFEFFwindow.YTD.like.part0=[{\"id\":\"3\"}];\n",
			expectedIDs: []string{"3"},
		},
		{
			name:        "single identifier",
			content:     "data = []",
			expectedIDs: []string{},
		},
		{
			name:          "missing prefix",
			content:       "[{\"id\":\"1\"}]",
			expectedError: archive.ErrMissingAssignment,
		},
		{
			name:          "object where array expected",
			content:       "window.YTD.x.part0 = {\"id\":\"1\"}",
			expectedError: archive.ErrUnexpectedShape,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			files := archive.FromContents(map[string]string{"data.js": testCase.content})
			var records []struct {
				ID string `json:"id"`
			}
			err := archive.DecodeAssignedJSON(files["data.js"], &records)
			if testCase.expectedError != nil {
				require.ErrorIs(t, err, testCase.expectedError)
				return
			}
			require.NoError(t, err)
			identifiers := []string{}
			for _, record := range records {
				identifiers = append(identifiers, record.ID)
			}
			assert.Equal(t, testCase.expectedIDs, identifiers)
		})
	}
}

func TestDecodeJSONMalformed(t *testing.T) {
	files := archive.FromContents(map[string]string{"broken.json": "{\"likes_media_likes\": ["})
	var target map[string]any
	err := archive.DecodeJSON(files["broken.json"], &target)
	require.Error(t, err)
	assert.NotErrorIs(t, err, archive.ErrUnexpectedShape)
}

func TestDetectPlatform(t *testing.T) {
	testCases := []struct {
		name             string
		paths            []string
		expectedPlatform archive.Platform
	}{
		{
			name:             "instagram activity folder",
			paths:            []string{"instagram-user/your_instagram_activity/likes/liked_posts.json"},
			expectedPlatform: archive.PlatformInstagram,
		},
		{
			name:             "twitter tweets file",
			paths:            []string{"twitter-2024/data/tweets.js", "twitter-2024/Your archive.html"},
			expectedPlatform: archive.PlatformTwitter,
		},
		{
			name:             "twitter like file only",
			paths:            []string{"data/like.js"},
			expectedPlatform: archive.PlatformTwitter,
		},
		{
			name:             "unrecognized layout",
			paths:            []string{"photos/cat.jpg", "notes.txt"},
			expectedPlatform: archive.PlatformUnknown,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			contents := map[string]string{}
			for _, filePath := range testCase.paths {
				contents[filePath] = ""
			}
			assert.Equal(t, testCase.expectedPlatform, archive.DetectPlatform(archive.FromContents(contents)))
		})
	}
}

func TestFromZip(t *testing.T) {
	archivePath := createArchive(t, map[string]string{
		"twitter/data/tweets.js":   "window.YTD.tweets.part0 = []",
		"twitter/data/account.js":  "window.YTD.account.part0 = []",
		"twitter/assets/style.css": "body{}",
	})

	files, closer, err := archive.FromZip(archivePath)
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, []string{"twitter/assets/style.css", "twitter/data/account.js", "twitter/data/tweets.js"}, files.Paths())
	assert.Equal(t, archive.Stats{TotalFiles: 3, ScriptFiles: 2}, archive.Describe(files))

	var tweets []any
	require.NoError(t, archive.DecodeAssignedJSON(files["twitter/data/tweets.js"], &tweets))
	assert.Empty(t, tweets)
}

func TestFromDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "instagram-export")
	likesDir := filepath.Join(root, "your_instagram_activity", "likes")
	require.NoError(t, os.MkdirAll(likesDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(likesDir, "liked_posts.json"), []byte(`{"likes_media_likes":[]}`), 0o644))

	files, err := archive.FromDirectory(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"instagram-export/your_instagram_activity/likes/liked_posts.json"}, files.Paths())

	_, opener, found := archive.Resolve(files, "liked_posts.json")
	require.True(t, found)
	var document map[string]any
	require.NoError(t, archive.DecodeJSON(opener, &document))
	assert.Contains(t, document, "likes_media_likes")
}

func TestFromDirectoryMissingRoot(t *testing.T) {
	_, err := archive.FromDirectory(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}

func createArchive(t *testing.T, files map[string]string) string {
	t.Helper()
	archivePath := filepath.Join(t.TempDir(), "archive.zip")

	file, err := os.Create(archivePath)
	require.NoError(t, err)
	defer file.Close()

	writer := zip.NewWriter(file)
	for name, content := range files {
		entry, createErr := writer.Create(name)
		require.NoError(t, createErr)
		_, writeErr := entry.Write([]byte(content))
		require.NoError(t, writeErr)
	}
	require.NoError(t, writer.Close())
	return archivePath
}
