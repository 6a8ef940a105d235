// Package config turns bound viper settings into validated analysis and server configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/f-sync/socialstats/internal/categorize"
	"github.com/f-sync/socialstats/internal/conversations"
	"github.com/f-sync/socialstats/internal/report"
)

// Settings keys shared by command flags, environment variables and config files.
const (
	KeyTop            = "top"
	KeyTimezone       = "timezone"
	KeyCategoriesFile = "categories-file"
	KeyFormat         = "format"
	KeyNoColor        = "no-color"
	KeyConcurrency    = "concurrency"
	KeyHost           = "host"
	KeyPort           = "port"
	KeyMaxUploadMB    = "max-upload-mb"
)

// Defaults applied to unset settings.
const (
	DefaultConcurrency = 2
	DefaultHost        = "127.0.0.1"
	DefaultPort        = 8080
	DefaultMaxUploadMB = 512
)

const (
	localTimezoneName       = "local"
	bytesPerMegabyte        = 1 << 20
	maxPort                 = 65535
	readConfigErrorFormat   = "read config %s: %w"
	valueErrorFormat        = "%w: %q"
	intValueErrorFormat     = "%w: %d"
	loadLocationErrorFormat = "%w %q: %v"
	errMessageFormat        = "unsupported report format"
	errMessageTimezone      = "unknown timezone"
	errMessagePort          = "port out of range"
	errMessageUploadLimit   = "upload limit must be positive"
)

var (
	// ErrUnsupportedFormat reports a format other than text or json.
	ErrUnsupportedFormat = errors.New(errMessageFormat)
	// ErrUnknownTimezone reports a timezone the system zone database cannot load.
	ErrUnknownTimezone = errors.New(errMessageTimezone)
	// ErrInvalidPort reports a port outside 1..65535.
	ErrInvalidPort = errors.New(errMessagePort)
	// ErrInvalidUploadLimit reports a non-positive upload limit.
	ErrInvalidUploadLimit = errors.New(errMessageUploadLimit)
)

// Analysis is the validated configuration of an analyze run.
type Analysis struct {
	TopN           int
	Location       *time.Location
	CategoriesFile string
	Tables         categorize.Tables
	Format         string
	NoColor        bool
	Concurrency    int
}

// Server is the validated configuration of the HTTP server.
type Server struct {
	Host           string
	Port           int
	MaxUploadBytes int64
}

// Address joins host and port for net/http.
func (server Server) Address() string {
	return fmt.Sprintf("%s:%d", server.Host, server.Port)
}

// ReadFile merges a YAML, TOML or JSON config file into settings. The format follows the file
// extension. An empty path is a no-op.
func ReadFile(settings *viper.Viper, configPath string) error {
	if configPath == "" {
		return nil
	}
	settings.SetConfigFile(configPath)
	if err := settings.ReadInConfig(); err != nil {
		return fmt.Errorf(readConfigErrorFormat, configPath, err)
	}
	return nil
}

// LoadAnalysis validates the analysis settings. Unset values fall back to defaults: top
// conversations.DefaultTopN, the local timezone, the built-in category tables, text output and
// DefaultConcurrency.
func LoadAnalysis(settings *viper.Viper) (Analysis, error) {
	analysis := Analysis{
		TopN:           settings.GetInt(KeyTop),
		CategoriesFile: strings.TrimSpace(settings.GetString(KeyCategoriesFile)),
		Format:         strings.ToLower(strings.TrimSpace(settings.GetString(KeyFormat))),
		NoColor:        settings.GetBool(KeyNoColor),
		Concurrency:    settings.GetInt(KeyConcurrency),
	}
	if analysis.TopN <= 0 {
		analysis.TopN = conversations.DefaultTopN
	}
	if analysis.Concurrency <= 0 {
		analysis.Concurrency = DefaultConcurrency
	}

	switch analysis.Format {
	case "":
		analysis.Format = report.FormatText
	case report.FormatText, report.FormatJSON:
	default:
		return Analysis{}, fmt.Errorf(valueErrorFormat, ErrUnsupportedFormat, analysis.Format)
	}

	location, err := LoadLocation(settings.GetString(KeyTimezone))
	if err != nil {
		return Analysis{}, err
	}
	analysis.Location = location

	analysis.Tables = categorize.DefaultTables()
	if analysis.CategoriesFile != "" {
		tables, loadErr := categorize.LoadRulesFile(analysis.CategoriesFile)
		if loadErr != nil {
			return Analysis{}, loadErr
		}
		analysis.Tables = tables
	}
	return analysis, nil
}

// LoadServer validates the server settings.
func LoadServer(settings *viper.Viper) (Server, error) {
	server := Server{
		Host: strings.TrimSpace(settings.GetString(KeyHost)),
		Port: settings.GetInt(KeyPort),
	}
	if server.Host == "" {
		server.Host = DefaultHost
	}
	if server.Port == 0 {
		server.Port = DefaultPort
	}
	if server.Port < 0 || server.Port > maxPort {
		return Server{}, fmt.Errorf(intValueErrorFormat, ErrInvalidPort, server.Port)
	}

	maxUploadMB := DefaultMaxUploadMB
	if settings.IsSet(KeyMaxUploadMB) {
		maxUploadMB = settings.GetInt(KeyMaxUploadMB)
	}
	if maxUploadMB <= 0 {
		return Server{}, fmt.Errorf(intValueErrorFormat, ErrInvalidUploadLimit, maxUploadMB)
	}
	server.MaxUploadBytes = int64(maxUploadMB) * bytesPerMegabyte
	return server, nil
}

// LoadLocation resolves an IANA zone name. An empty name or "local" selects time.Local.
func LoadLocation(name string) (*time.Location, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || strings.EqualFold(trimmed, localTimezoneName) {
		return time.Local, nil
	}
	location, err := time.LoadLocation(trimmed)
	if err != nil {
		return nil, fmt.Errorf(loadLocationErrorFormat, ErrUnknownTimezone, trimmed, err)
	}
	return location, nil
}
