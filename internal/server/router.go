// Package server exposes the export analyzer as a local HTTP API. Uploaded archives are analyzed in
// the background and kept in memory until deleted or the process exits.
package server

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/f-sync/socialstats/internal/archive"
	"github.com/f-sync/socialstats/internal/engine"
)

const (
	healthRoutePath            = "/healthz"
	analysesRoutePath          = "/api/analyses"
	analysisRoutePath          = "/api/analyses/:id"
	analysisReportRoutePath    = "/api/analyses/:id/report"
	analysisIDParameter        = "id"
	archiveFormField           = "archive"
	zipFileExtension           = ".zip"
	healthStatusKey            = "status"
	healthStatusOK             = "ok"
	responseIDKey              = "id"
	responseErrorKey           = "error"
	errorMessageMissingArchive = "multipart field \"archive\" with a .zip file is required"
	errorMessageNotZip         = "archive must be a .zip file"
	errorMessageUploadTooLarge = "archive exceeds the upload limit"
	errorMessageInvalidZip     = "archive is not a readable zip file"
	errorMessageReadUpload     = "archive upload could not be read"
	errorMessageNotFound       = "analysis not found"
	errorMessageStillRunning   = "analysis is still running"
	errorMessageAnalysisFailed = "analysis failed"
	logMessageAnalysisAccepted = "analysis accepted"
	logMessageAnalysisComplete = "analysis completed"
	logMessageAnalysisFailed   = "analysis failed"
	logMessageAnalysisDeleted  = "analysis deleted"
	logMessageUploadRejected   = "archive upload rejected"
	logFieldAnalysisID         = "analysis_id"
	logFieldFileName           = "file_name"
	logFieldSize               = "size_bytes"
	logFieldPlatform           = "platform"
	logFieldFileErrors         = "file_errors"
	logFieldStatusCode         = "status_code"
	ginModeRelease             = "release"
)

const defaultMaxUploadBytes = 512 << 20

// RouterConfig configures the analysis API.
type RouterConfig struct {
	Analyzer       *engine.Analyzer
	Logger         *zap.Logger
	MaxUploadBytes int64
	// NewID generates analysis identifiers; uuid.NewString when nil.
	NewID func() string
}

// NewRouter constructs a Gin engine serving the health and analysis handlers.
func NewRouter(configuration RouterConfig) (*gin.Engine, error) {
	analyzer := configuration.Analyzer
	if analyzer == nil {
		analyzer = engine.NewAnalyzer(engine.Options{Logger: configuration.Logger})
	}
	logger := configuration.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxUploadBytes := configuration.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	newID := configuration.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	gin.SetMode(ginModeRelease)
	router := gin.New()
	router.Use(gin.Recovery())

	handler := &analysisHandler{
		analyzer:       analyzer,
		sessions:       newSessionStore(),
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
		newID:          newID,
	}

	router.GET(healthRoutePath, handler.healthStatus)
	router.POST(analysesRoutePath, handler.createAnalysis)
	router.GET(analysisRoutePath, handler.analysisStatus)
	router.GET(analysisReportRoutePath, handler.analysisReport)
	router.DELETE(analysisRoutePath, handler.deleteAnalysis)

	return router, nil
}

type analysisHandler struct {
	analyzer       *engine.Analyzer
	sessions       *sessionStore
	logger         *zap.Logger
	maxUploadBytes int64
	newID          func() string
}

func (handler *analysisHandler) healthStatus(ginContext *gin.Context) {
	ginContext.JSON(http.StatusOK, map[string]string{healthStatusKey: healthStatusOK})
}

func (handler *analysisHandler) createAnalysis(ginContext *gin.Context) {
	ginContext.Request.Body = http.MaxBytesReader(ginContext.Writer, ginContext.Request.Body, handler.maxUploadBytes)

	fileHeader, err := ginContext.FormFile(archiveFormField)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			handler.rejectUpload(ginContext, http.StatusRequestEntityTooLarge, errorMessageUploadTooLarge, err)
			return
		}
		handler.rejectUpload(ginContext, http.StatusBadRequest, errorMessageMissingArchive, err)
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), zipFileExtension) {
		handler.rejectUpload(ginContext, http.StatusBadRequest, errorMessageNotZip, nil)
		return
	}

	uploadedFile, err := fileHeader.Open()
	if err != nil {
		handler.rejectUpload(ginContext, http.StatusBadRequest, errorMessageReadUpload, err)
		return
	}
	content, err := io.ReadAll(uploadedFile)
	uploadedFile.Close()
	if err != nil {
		handler.rejectUpload(ginContext, http.StatusBadRequest, errorMessageReadUpload, err)
		return
	}
	files, err := archive.FromZipBytes(content)
	if err != nil {
		handler.rejectUpload(ginContext, http.StatusBadRequest, errorMessageInvalidZip, err)
		return
	}

	snapshot := handler.sessions.Create(handler.newID(), fileHeader.Filename)
	handler.logger.Info(logMessageAnalysisAccepted,
		zap.String(logFieldAnalysisID, snapshot.ID),
		zap.String(logFieldFileName, snapshot.FileName),
		zap.Int(logFieldSize, len(content)),
	)
	go handler.runAnalysis(snapshot.ID, files)

	ginContext.JSON(http.StatusAccepted, map[string]string{responseIDKey: snapshot.ID})
}

func (handler *analysisHandler) runAnalysis(identifier string, files archive.FileSet) {
	report, err := handler.analyzer.Analyze(files, func(percent int) {
		handler.sessions.RecordProgress(identifier, percent)
	})
	if err != nil {
		handler.logger.Warn(logMessageAnalysisFailed, zap.String(logFieldAnalysisID, identifier), zap.Error(err))
		handler.sessions.Fail(identifier, report, err)
		return
	}
	handler.logger.Info(logMessageAnalysisComplete,
		zap.String(logFieldAnalysisID, identifier),
		zap.String(logFieldPlatform, string(report.Platform)),
		zap.Int(logFieldFileErrors, len(report.Metadata().Errors)),
	)
	handler.sessions.Complete(identifier, report)
}

func (handler *analysisHandler) analysisStatus(ginContext *gin.Context) {
	snapshot, exists := handler.sessions.Snapshot(ginContext.Param(analysisIDParameter))
	if !exists {
		ginContext.JSON(http.StatusNotFound, map[string]string{responseErrorKey: errorMessageNotFound})
		return
	}
	ginContext.JSON(http.StatusOK, snapshot)
}

func (handler *analysisHandler) analysisReport(ginContext *gin.Context) {
	report, status, exists := handler.sessions.Report(ginContext.Param(analysisIDParameter))
	switch {
	case !exists:
		ginContext.JSON(http.StatusNotFound, map[string]string{responseErrorKey: errorMessageNotFound})
	case status == AnalysisStatusRunning:
		ginContext.JSON(http.StatusConflict, map[string]string{responseErrorKey: errorMessageStillRunning})
	case status == AnalysisStatusFailed:
		ginContext.JSON(http.StatusUnprocessableEntity, map[string]string{responseErrorKey: errorMessageAnalysisFailed})
	default:
		ginContext.JSON(http.StatusOK, report)
	}
}

func (handler *analysisHandler) deleteAnalysis(ginContext *gin.Context) {
	identifier := ginContext.Param(analysisIDParameter)
	if !handler.sessions.Delete(identifier) {
		ginContext.JSON(http.StatusNotFound, map[string]string{responseErrorKey: errorMessageNotFound})
		return
	}
	handler.logger.Info(logMessageAnalysisDeleted, zap.String(logFieldAnalysisID, identifier))
	ginContext.Status(http.StatusNoContent)
}

func (handler *analysisHandler) rejectUpload(ginContext *gin.Context, statusCode int, message string, cause error) {
	fields := []zap.Field{zap.Int(logFieldStatusCode, statusCode)}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	handler.logger.Warn(logMessageUploadRejected, fields...)
	ginContext.JSON(statusCode, map[string]string{responseErrorKey: message})
}
