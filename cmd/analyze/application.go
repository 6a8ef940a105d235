package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/f-sync/socialstats/internal/archive"
	"github.com/f-sync/socialstats/internal/engine"
	"github.com/f-sync/socialstats/internal/report"
)

// ErrArchivesFailed reports that at least one archive of a batch could not be analyzed.
var ErrArchivesFailed = errors.New(errMessageArchivesFailed)

// AnalyzeConfiguration describes one analyze run.
type AnalyzeConfiguration struct {
	ArchivePaths []string
	Format       string
	Color        bool
	Concurrency  int
}

// AnalyzeDependencies are the collaborators of an AnalyzeApplication. Nil fields select defaults.
type AnalyzeDependencies struct {
	OpenArchive func(string) (archive.FileSet, io.Closer, error)
	Analyzer    *engine.Analyzer
	Logger      *zap.Logger
	Stdout      io.Writer
	Stderr      io.Writer
}

// AnalyzeApplication analyzes a batch of exports and writes one report per export.
type AnalyzeApplication struct {
	dependencies AnalyzeDependencies
}

type archiveOutcome struct {
	rendered bytes.Buffer
	err      error
}

// NewAnalyzeApplicationWithDependencies fills unset dependencies with defaults.
func NewAnalyzeApplicationWithDependencies(dependencies AnalyzeDependencies) AnalyzeApplication {
	if dependencies.OpenArchive == nil {
		dependencies.OpenArchive = engine.Open
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Analyzer == nil {
		dependencies.Analyzer = engine.NewAnalyzer(engine.Options{Logger: dependencies.Logger})
	}
	if dependencies.Stdout == nil {
		dependencies.Stdout = os.Stdout
	}
	if dependencies.Stderr == nil {
		dependencies.Stderr = os.Stderr
	}
	return AnalyzeApplication{dependencies: dependencies}
}

// Run analyzes every archive with at most Concurrency archives in flight and writes the reports in
// argument order. Failed archives are reported on Stderr; the remaining reports are still written.
func (application AnalyzeApplication) Run(executionContext context.Context, configuration AnalyzeConfiguration) error {
	outcomes := make([]*archiveOutcome, len(configuration.ArchivePaths))
	concurrency := configuration.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var (
		outcomesMutex sync.Mutex
		group         errgroup.Group
	)
	group.SetLimit(concurrency)
	for index, archivePath := range configuration.ArchivePaths {
		index, archivePath := index, archivePath
		group.Go(func() error {
			outcome := &archiveOutcome{}
			if err := executionContext.Err(); err != nil {
				outcome.err = err
			} else {
				outcome.err = application.analyzeArchive(archivePath, configuration, &outcome.rendered)
			}
			outcomesMutex.Lock()
			outcomes[index] = outcome
			outcomesMutex.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	failures := 0
	written := 0
	for index, outcome := range outcomes {
		archivePath := configuration.ArchivePaths[index]
		if outcome.err != nil {
			failures++
			application.dependencies.Logger.Warn(logMessageArchiveFailed, zap.String(logFieldArchive, archivePath), zap.Error(outcome.err))
			fmt.Fprintf(application.dependencies.Stderr, archiveErrorFormat, archivePath, outcome.err)
			continue
		}
		if written > 0 && configuration.Format != report.FormatJSON {
			fmt.Fprintln(application.dependencies.Stdout)
		}
		if _, err := outcome.rendered.WriteTo(application.dependencies.Stdout); err != nil {
			return fmt.Errorf(writeOutputErrorFormat, err)
		}
		written++
	}
	if failures > 0 {
		return fmt.Errorf(archivesFailedErrorFormat, ErrArchivesFailed, failures, len(configuration.ArchivePaths))
	}
	return nil
}

func (application AnalyzeApplication) analyzeArchive(archivePath string, configuration AnalyzeConfiguration, output io.Writer) error {
	files, closer, err := application.dependencies.OpenArchive(archivePath)
	if err != nil {
		return err
	}
	defer closer.Close()

	logger := application.dependencies.Logger.With(zap.String(logFieldArchive, archivePath))
	analyzed, err := application.dependencies.Analyzer.Analyze(files, func(percent int) {
		logger.Debug(logMessageProgress, zap.Int(logFieldPercent, percent))
	})
	if err != nil {
		return err
	}
	return report.Write(output, configuration.Format, analyzed, report.Options{Color: configuration.Color, Source: archivePath})
}
