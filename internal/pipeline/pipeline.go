// Package pipeline runs the ordered dataset steps of an export parser, reports step-wise progress
// and records per-file failures without aborting the run.
package pipeline

import (
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/f-sync/socialstats/internal/archive"
)

const (
	completePercent = 100

	logMessageDatasetAbsent   = "dataset absent"
	logMessageDatasetLoaded   = "dataset loaded"
	logMessageDatasetFailed   = "dataset failed"
	logMessageStepCompleted   = "parse step completed"
	logFieldPattern           = "pattern"
	logFieldPath              = "path"
	logFieldStep              = "step"
	logFieldProgress          = "progress"
	errMessageDecoderRequired = "decoder is required"
)

var errDecoderRequired = errors.New(errMessageDecoderRequired)

// ProgressFunc receives the completion percentage after every step.
type ProgressFunc func(percent int)

// DecodeFunc decodes the file behind an opener into target.
type DecodeFunc func(open archive.Opener, target any) error

// FileError attributes a dataset failure to the file that caused it.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
	Err   error  `json:"-"`
}

// Metadata describes a parse run.
type Metadata struct {
	ParsedAt  time.Time   `json:"parsedAt"`
	FileCount int         `json:"fileCount"`
	Errors    []FileError `json:"errors"`
}

// Step is one named dataset parser.
type Step struct {
	Name string
	Run  func()
}

// Run executes steps sequentially. After step i of n it reports round(i/n*100); only the final step
// reports 100, so the sequence is non-decreasing and ends with exactly one 100.
func Run(logger *zap.Logger, steps []Step, onProgress ProgressFunc) {
	if logger == nil {
		logger = zap.NewNop()
	}
	total := len(steps)
	for index, step := range steps {
		if step.Run != nil {
			step.Run()
		}
		percent := StepPercent(index+1, total)
		logger.Debug(logMessageStepCompleted, zap.String(logFieldStep, step.Name), zap.Int(logFieldProgress, percent))
		if onProgress != nil {
			onProgress(percent)
		}
	}
	if total == 0 && onProgress != nil {
		onProgress(completePercent)
	}
}

// StepPercent returns the progress after completed of total steps, holding back 100 until the
// last step.
func StepPercent(completed int, total int) int {
	if total <= 0 || completed >= total {
		return completePercent
	}
	percent := int(math.Round(float64(completed) / float64(total) * completePercent))
	if percent >= completePercent {
		return completePercent - 1
	}
	return percent
}

// Collector resolves and decodes dataset files and accumulates their failures.
type Collector struct {
	files  archive.FileSet
	logger *zap.Logger
	errors []FileError
}

// NewCollector builds a collector over files.
func NewCollector(files archive.FileSet, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{files: files, logger: logger, errors: []FileError{}}
}

// Files exposes the file set the collector reads from.
func (collector *Collector) Files() archive.FileSet {
	return collector.files
}

// Record stores a failure for path.
func (collector *Collector) Record(path string, err error) {
	if err == nil {
		return
	}
	collector.logger.Warn(logMessageDatasetFailed, zap.String(logFieldPath, path), zap.Error(err))
	collector.errors = append(collector.errors, FileError{Path: path, Error: err.Error(), Err: err})
}

// Errors returns the failures recorded so far.
func (collector *Collector) Errors() []FileError {
	return append([]FileError{}, collector.errors...)
}

// Metadata summarizes the run for the collector's file set.
func (collector *Collector) Metadata(parsedAt time.Time) Metadata {
	return Metadata{ParsedAt: parsedAt, FileCount: len(collector.files), Errors: collector.Errors()}
}

// Decode resolves pattern and decodes it into a D. An absent file is not an error and reports
// false. Decode failures are recorded against the resolved path.
func Decode[D any](collector *Collector, pattern string, decode DecodeFunc) (D, string, bool) {
	var document D
	resolvedPath, opener, found := archive.Resolve(collector.files, pattern)
	if !found {
		collector.logger.Debug(logMessageDatasetAbsent, zap.String(logFieldPattern, pattern))
		return document, "", false
	}
	if decode == nil {
		collector.Record(resolvedPath, errDecoderRequired)
		return document, resolvedPath, false
	}
	if err := decode(opener, &document); err != nil {
		collector.Record(resolvedPath, err)
		return document, resolvedPath, false
	}
	collector.logger.Debug(logMessageDatasetLoaded, zap.String(logFieldPath, resolvedPath))
	return document, resolvedPath, true
}

// DecodeRequired behaves like Decode but records archive.ErrFileNotFound against pattern when the
// file is absent.
func DecodeRequired[D any](collector *Collector, pattern string, decode DecodeFunc) (D, string, bool) {
	if _, _, found := archive.Resolve(collector.files, pattern); !found {
		var document D
		collector.Record(pattern, archive.ErrFileNotFound)
		return document, "", false
	}
	return Decode[D](collector, pattern, decode)
}

// Load decodes the dataset behind pattern and converts it with build. It returns nil when the file
// is absent or when decoding or building fails; failures are recorded.
func Load[D any, R any](collector *Collector, pattern string, decode DecodeFunc, build func(D) (R, error)) *R {
	document, resolvedPath, ok := Decode[D](collector, pattern, decode)
	if !ok {
		return nil
	}
	result, err := build(document)
	if err != nil {
		collector.Record(resolvedPath, err)
		return nil
	}
	return &result
}
