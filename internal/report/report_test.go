package report_test

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f-sync/socialstats/internal/archive"
	"github.com/f-sync/socialstats/internal/engine"
	"github.com/f-sync/socialstats/internal/report"
)

const ansiEscape = "\x1b["

var fixedNow = time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC)

func analyze(t *testing.T, contents map[string]string) engine.Report {
	t.Helper()
	analyzer := engine.NewAnalyzer(engine.Options{Location: time.UTC, Now: func() time.Time { return fixedNow }})
	analyzed, err := analyzer.Analyze(archive.FromContents(contents), nil)
	require.NoError(t, err)
	return analyzed
}

func twitterReport(t *testing.T) engine.Report {
	return analyze(t, map[string]string{
		"twitter/data/account.js": `window.YTD.account.part0 = [{"account":{"username":"ozge","accountDisplayName":"Özge","accountId":"100","createdAt":"2020-03-15T10:00:00.000Z"}}]`,
		"twitter/data/like.js":    `window.YTD.like.part0 = [{"like":{"tweetId":"1","fullText":"a   liked\ntweet"}}]`,
		"twitter/data/tweets.js": `window.YTD.tweets.part0 = [
			{"tweet":{"id_str":"1","full_text":"morning #go","created_at":"Sat Jun 01 07:15:00 +0000 2024","favorite_count":"3","retweet_count":"1","entities":{"hashtags":[{"text":"go"}]}}}
		]`,
	})
}

func instagramReport(t *testing.T) engine.Report {
	return analyze(t, map[string]string{
		"instagram-user/your_instagram_activity/likes/liked_posts.json": `{"likes_media_likes":[
			{"title":"alice","string_list_data":[{"href":"https://www.instagram.com/p/1/","timestamp":1717226100}]},
			{"title":"alice","string_list_data":[{"href":"https://www.instagram.com/p/2/","timestamp":1717229700}]}
		]}`,
		"instagram-user/connections/followers_and_following/followers_1.json": `[
			{"string_list_data":[{"value":"bob","href":"https://www.instagram.com/bob","timestamp":1717226100}]}
		]`,
		"instagram-user/connections/followers_and_following/following.json": `{"relationships_following":[
			{"string_list_data":[{"value":"bob","href":"https://www.instagram.com/bob","timestamp":1717226100}]}
		]}`,
	})
}

func TestWriteTextTwitter(t *testing.T) {
	var output bytes.Buffer
	require.NoError(t, report.WriteText(&output, twitterReport(t), report.Options{Source: "twitter.zip"}))

	text := output.String()
	assert.NotContains(t, text, ansiEscape)
	for _, expected := range []string{
		"twitter export",
		"source: twitter.zip",
		"files: 3 total, 0 json, 3 js",
		"parsed at: 2024-06-30 12:00:00 UTC",
		"Özge (@ozge)",
		"Account age",
		"4y 3m 15d",
		"Top hashtags",
		"1. go (1)",
		"Recent likes",
		"a liked tweet",
		"Errors (2)",
		"follower.js: ",
		"following.js: ",
	} {
		assert.Contains(t, text, expected)
	}
}

func TestWriteTextInstagram(t *testing.T) {
	var output bytes.Buffer
	require.NoError(t, report.WriteText(&output, instagramReport(t), report.Options{}))

	text := output.String()
	for _, expected := range []string{
		"instagram export",
		"Overview",
		"Top liked accounts",
		"1. alice (2)",
		"Activity",
	} {
		assert.Contains(t, text, expected)
	}
	assert.NotContains(t, text, "source:")
	assert.NotContains(t, text, "Errors (")
}

func TestWriteTextColor(t *testing.T) {
	var colored bytes.Buffer
	require.NoError(t, report.WriteText(&colored, twitterReport(t), report.Options{Color: true}))
	assert.Contains(t, colored.String(), ansiEscape)

	var plain bytes.Buffer
	require.NoError(t, report.WriteText(&plain, twitterReport(t), report.Options{Color: false}))
	assert.NotContains(t, plain.String(), ansiEscape)
}

func TestWriteTextUnknownPlatform(t *testing.T) {
	var output bytes.Buffer
	require.NoError(t, report.WriteText(&output, engine.Report{}, report.Options{}))
	assert.Equal(t, "unknown export\nfiles: 0 total, 0 json, 0 js\n", output.String())
}

func TestWrite(t *testing.T) {
	testCases := []struct {
		name          string
		format        string
		expectedStart string
		expectedError error
	}{
		{name: "json", format: report.FormatJSON, expectedStart: "{\n  \"platform\": \"twitter\""},
		{name: "text", format: report.FormatText, expectedStart: "twitter export"},
		{name: "default text", format: "", expectedStart: "twitter export"},
		{name: "unknown", format: "xml", expectedError: report.ErrUnknownFormat},
	}

	analyzed := twitterReport(t)
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			var output bytes.Buffer
			err := report.Write(&output, testCase.format, analyzed, report.Options{})
			if testCase.expectedError != nil {
				require.ErrorIs(t, err, testCase.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, output.String()[:len(testCase.expectedStart)], testCase.expectedStart)
		})
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	var output bytes.Buffer
	require.NoError(t, report.WriteJSON(&output, twitterReport(t)))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(output.Bytes(), &decoded))
	assert.Equal(t, "twitter", decoded["platform"])
	assert.Contains(t, decoded, "twitterSummary")
	assert.NotContains(t, decoded, "instagram")

	summary, ok := decoded["twitterSummary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ozge", summary["username"])
	assert.EqualValues(t, 1, summary["totalTweets"])
}

func TestColorEnabled(t *testing.T) {
	regularFile, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer regularFile.Close()

	var nilFile *os.File
	testCases := []struct {
		name    string
		output  io.Writer
		noColor bool
	}{
		{name: "nil writer", output: nil},
		{name: "nil file", output: nilFile},
		{name: "buffer", output: &bytes.Buffer{}},
		{name: "regular file", output: regularFile},
		{name: "color disabled", output: os.Stdout, noColor: true},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			assert.False(t, report.ColorEnabled(testCase.output, testCase.noColor))
		})
	}
}
