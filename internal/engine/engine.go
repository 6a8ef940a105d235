// Package engine detects which platform produced an export and runs the matching parser.
package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/f-sync/socialstats/internal/archive"
	"github.com/f-sync/socialstats/internal/categorize"
	"github.com/f-sync/socialstats/internal/instagram"
	"github.com/f-sync/socialstats/internal/pipeline"
	"github.com/f-sync/socialstats/internal/twitter"
)

const (
	errMessageUnrecognizedArchive = "archive is neither an Instagram export nor a Twitter/X archive"
	statPathErrorFormat           = "stat %s: %w"
	unsupportedPathErrorFormat    = "%w: %s"
	zipFileExtension              = ".zip"
	logMessageDetected            = "export platform detected"
	logMessageUnrecognized        = "export platform not recognized"
	logFieldPlatform              = "platform"
	logFieldFileCount             = "files"
)

// ErrUnrecognizedArchive reports a file set that carries neither export layout.
var ErrUnrecognizedArchive = errors.New(errMessageUnrecognizedArchive)

// Options configures an Analyzer. Zero values select the parser defaults.
type Options struct {
	Logger   *zap.Logger
	Location *time.Location
	TopN     int
	Now      func() time.Time
	Tables   *categorize.Tables
}

// Report is the outcome of analyzing one export. Exactly one platform section is set.
type Report struct {
	Platform         archive.Platform   `json:"platform"`
	Stats            archive.Stats      `json:"stats"`
	Instagram        *instagram.Result  `json:"instagram,omitempty"`
	InstagramSummary *instagram.Summary `json:"instagramSummary,omitempty"`
	Twitter          *twitter.Result    `json:"twitter,omitempty"`
	TwitterSummary   *twitter.Summary   `json:"twitterSummary,omitempty"`
}

// Metadata returns the parse metadata of whichever platform section is present.
func (report Report) Metadata() pipeline.Metadata {
	switch {
	case report.Instagram != nil:
		return report.Instagram.Metadata
	case report.Twitter != nil:
		return report.Twitter.Metadata
	}
	return pipeline.Metadata{Errors: []pipeline.FileError{}}
}

// Analyzer dispatches file sets to the platform parsers.
type Analyzer struct {
	logger          *zap.Logger
	instagramParser *instagram.Parser
	twitterParser   *twitter.Parser
}

// NewAnalyzer builds an Analyzer whose parsers share the given options.
func NewAnalyzer(options Options) *Analyzer {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	instagramOptions := instagram.Options{Logger: logger, Location: options.Location, TopN: options.TopN, Now: options.Now}
	twitterOptions := twitter.Options{Logger: logger, Location: options.Location, TopN: options.TopN, Now: options.Now}
	if options.Tables != nil {
		instagramTopics := options.Tables.Instagram
		twitterInterests := options.Tables.Twitter
		instagramOptions.Topics = &instagramTopics
		twitterOptions.Interests = &twitterInterests
	}
	return &Analyzer{
		logger:          logger,
		instagramParser: instagram.NewParser(instagramOptions),
		twitterParser:   twitter.NewParser(twitterOptions),
	}
}

// Analyze detects the platform of files and parses them. It fails only when the file set matches no
// known export layout; dataset failures are reported inside the result metadata.
func (analyzer *Analyzer) Analyze(files archive.FileSet, onProgress pipeline.ProgressFunc) (Report, error) {
	report := Report{
		Platform: archive.DetectPlatform(files),
		Stats:    archive.Describe(files),
	}
	switch report.Platform {
	case archive.PlatformInstagram:
		analyzer.logger.Info(logMessageDetected, zap.String(logFieldPlatform, string(report.Platform)), zap.Int(logFieldFileCount, len(files)))
		result := analyzer.instagramParser.Parse(files, onProgress)
		summary := instagram.Summarize(result)
		report.Instagram = &result
		report.InstagramSummary = &summary
	case archive.PlatformTwitter:
		analyzer.logger.Info(logMessageDetected, zap.String(logFieldPlatform, string(report.Platform)), zap.Int(logFieldFileCount, len(files)))
		result := analyzer.twitterParser.Parse(files, onProgress)
		summary := twitter.Summarize(result)
		report.Twitter = &result
		report.TwitterSummary = &summary
	default:
		analyzer.logger.Warn(logMessageUnrecognized, zap.Int(logFieldFileCount, len(files)))
		return report, ErrUnrecognizedArchive
	}
	return report, nil
}

// Analyze runs a default Analyzer over files.
func Analyze(files archive.FileSet, onProgress pipeline.ProgressFunc) (Report, error) {
	return NewAnalyzer(Options{}).Analyze(files, onProgress)
}

// Open loads an export from a directory or a .zip file. The closer must be closed once the file
// set is no longer read.
func Open(exportPath string) (archive.FileSet, io.Closer, error) {
	info, err := os.Stat(exportPath)
	if err != nil {
		return nil, nil, fmt.Errorf(statPathErrorFormat, exportPath, err)
	}
	if info.IsDir() {
		files, walkErr := archive.FromDirectory(exportPath)
		if walkErr != nil {
			return nil, nil, walkErr
		}
		return files, nopCloser{}, nil
	}
	if strings.EqualFold(filepath.Ext(exportPath), zipFileExtension) {
		return archive.FromZip(exportPath)
	}
	return nil, nil, fmt.Errorf(unsupportedPathErrorFormat, ErrUnrecognizedArchive, exportPath)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
