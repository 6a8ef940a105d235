package server

import (
	"sync"

	"github.com/f-sync/socialstats/internal/archive"
	"github.com/f-sync/socialstats/internal/engine"
	"github.com/f-sync/socialstats/internal/pipeline"
)

// AnalysisStatus is the lifecycle state of an uploaded archive.
type AnalysisStatus string

const (
	// AnalysisStatusRunning marks an archive that is still being parsed.
	AnalysisStatusRunning   = AnalysisStatus("running")
	// AnalysisStatusCompleted marks an analysis whose report is available.
	AnalysisStatusCompleted = AnalysisStatus("completed")
	// AnalysisStatusFailed marks an archive that matched no supported platform.
	AnalysisStatusFailed    = AnalysisStatus("failed")
)

// AnalysisSnapshot copies the public state of an analysis for serialization.
type AnalysisSnapshot struct {
	ID       string               `json:"id"`
	FileName string               `json:"fileName"`
	Status   AnalysisStatus       `json:"status"`
	Progress int                  `json:"progress"`
	Platform archive.Platform     `json:"platform"`
	Failure  string               `json:"failure,omitempty"`
	Errors   []pipeline.FileError `json:"errors"`
}

type analysisSession struct {
	identifier string
	fileName   string
	status     AnalysisStatus
	progress   int
	failure    string
	report     *engine.Report
}

// sessionStore keeps every analysis of the running process in memory.
type sessionStore struct {
	mutex    sync.Mutex
	sessions map[string]*analysisSession
}

// newSessionStore returns an empty store.
func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*analysisSession)}
}

// Create registers a running analysis and returns its initial snapshot.
func (store *sessionStore) Create(identifier string, fileName string) AnalysisSnapshot {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	session := &analysisSession{identifier: identifier, fileName: fileName, status: AnalysisStatusRunning}
	store.sessions[identifier] = session
	return snapshotSession(session)
}

// RecordProgress keeps the highest percentage reported for a running analysis.
func (store *sessionStore) RecordProgress(identifier string, percent int) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	session, exists := store.sessions[identifier]
	if !exists || session.status != AnalysisStatusRunning {
		return
	}
	if percent > session.progress {
		session.progress = percent
	}
}

// Complete stores the report of an analysis and sets its progress to 100.
func (store *sessionStore) Complete(identifier string, report engine.Report) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	session, exists := store.sessions[identifier]
	if !exists {
		return
	}
	session.status = AnalysisStatusCompleted
	session.progress = 100
	session.report = &report
}

// Fail marks an analysis as failed. The partial report keeps its per-file errors for snapshots.
func (store *sessionStore) Fail(identifier string, report engine.Report, failure error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	session, exists := store.sessions[identifier]
	if !exists {
		return
	}
	session.status = AnalysisStatusFailed
	session.failure = failure.Error()
	session.report = &report
}

// Snapshot returns a copy of the analysis state.
func (store *sessionStore) Snapshot(identifier string) (AnalysisSnapshot, bool) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	session, exists := store.sessions[identifier]
	if !exists {
		return AnalysisSnapshot{}, false
	}
	return snapshotSession(session), true
}

// Report returns the finished report of a completed analysis.
func (store *sessionStore) Report(identifier string) (engine.Report, AnalysisStatus, bool) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	session, exists := store.sessions[identifier]
	if !exists {
		return engine.Report{}, "", false
	}
	if session.status != AnalysisStatusCompleted || session.report == nil {
		return engine.Report{}, session.status, true
	}
	return *session.report, session.status, true
}

// Delete removes an analysis and reports whether it existed.
func (store *sessionStore) Delete(identifier string) bool {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	if _, exists := store.sessions[identifier]; !exists {
		return false
	}
	delete(store.sessions, identifier)
	return true
}

func snapshotSession(session *analysisSession) AnalysisSnapshot {
	snapshot := AnalysisSnapshot{
		ID:       session.identifier,
		FileName: session.fileName,
		Status:   session.status,
		Progress: session.progress,
		Failure:  session.failure,
		Errors:   []pipeline.FileError{},
	}
	if session.report != nil {
		snapshot.Platform = session.report.Platform
		snapshot.Errors = append(snapshot.Errors, session.report.Metadata().Errors...)
	}
	return snapshot
}
