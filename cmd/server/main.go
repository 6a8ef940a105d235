package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/f-sync/socialstats/internal/config"
	"github.com/f-sync/socialstats/internal/engine"
	"github.com/f-sync/socialstats/internal/server"
)

const (
	commandUse                  = "server"
	commandShortDescription     = "Serve the export analyzer as a local HTTP API"
	envPrefix                   = "SOCIALSTATS_SERVER"
	flagHostDescription         = "Host interface for the HTTP server"
	flagPortDescription         = "Port for the HTTP server"
	flagMaxUploadDescription    = "Largest accepted archive upload in megabytes"
	flagTopDescription          = "Length of the conversation rankings"
	flagTimezoneDescription     = "IANA timezone used for time of day statistics (default local)"
	flagCategoriesDescription   = "YAML file overriding the topic and interest category tables"
	flagConfigName              = "config"
	flagConfigDescription       = "Config file (YAML, TOML or JSON)"
	flagDebugName               = "debug"
	flagDebugDescription        = "Enable development logging"
	shutdownTimeout             = 10 * time.Second
	errMessageLoggerCreate      = "create logger"
	errMessageListenAndServe    = "listen and serve"
	errMessageShutdown          = "shutdown"
	logMessageStartingServer    = "starting HTTP server"
	logMessageServerStopped     = "server stopped"
	logMessageListenError       = "server listen failure"
	logMessageShutdownRequested = "shutdown requested"
	logFieldAddress             = "address"
	logFieldMaxUploadBytes      = "max_upload_bytes"
	wrappedErrorFormat          = "%s: %w"
)

func main() {
	cobra.CheckErr(newServerCommand().Execute())
}

func newServerCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   commandUse,
		Short: commandShortDescription,
		RunE:  runServerCommand,
	}

	command.Flags().String(config.KeyHost, config.DefaultHost, flagHostDescription)
	command.Flags().Int(config.KeyPort, config.DefaultPort, flagPortDescription)
	command.Flags().Int(config.KeyMaxUploadMB, config.DefaultMaxUploadMB, flagMaxUploadDescription)
	command.Flags().Int(config.KeyTop, 0, flagTopDescription)
	command.Flags().String(config.KeyTimezone, "", flagTimezoneDescription)
	command.Flags().String(config.KeyCategoriesFile, "", flagCategoriesDescription)
	command.Flags().String(flagConfigName, "", flagConfigDescription)
	command.Flags().Bool(flagDebugName, false, flagDebugDescription)

	for _, flagName := range []string{config.KeyHost, config.KeyPort, config.KeyMaxUploadMB, config.KeyTop, config.KeyTimezone, config.KeyCategoriesFile, flagDebugName} {
		bindFlagToViper(command, flagName)
	}

	cobra.OnInitialize(configureEnvironment)

	return command
}

func bindFlagToViper(command *cobra.Command, flagName string) {
	cobra.CheckErr(viper.BindPFlag(flagName, command.Flags().Lookup(flagName)))
}

func configureEnvironment() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func runServerCommand(command *cobra.Command, _ []string) error {
	configPath, _ := command.Flags().GetString(flagConfigName)
	if err := config.ReadFile(viper.GetViper(), configPath); err != nil {
		return err
	}
	serverConfig, err := config.LoadServer(viper.GetViper())
	if err != nil {
		return err
	}
	analysisConfig, err := config.LoadAnalysis(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := newLogger(viper.GetBool(flagDebugName))
	if err != nil {
		return fmt.Errorf(wrappedErrorFormat, errMessageLoggerCreate, err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	analyzer := engine.NewAnalyzer(engine.Options{
		Logger:   logger,
		Location: analysisConfig.Location,
		TopN:     analysisConfig.TopN,
		Tables:   &analysisConfig.Tables,
	})
	router, err := server.NewRouter(server.RouterConfig{
		Analyzer:       analyzer,
		Logger:         logger,
		MaxUploadBytes: serverConfig.MaxUploadBytes,
	})
	if err != nil {
		return err
	}

	address := serverConfig.Address()
	logger.Info(logMessageStartingServer, zap.String(logFieldAddress, address), zap.Int64(logFieldMaxUploadBytes, serverConfig.MaxUploadBytes))

	signalContext, stop := signal.NotifyContext(command.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{Addr: address, Handler: router}
	listenErrors := make(chan error, 1)
	go func() {
		listenErrors <- httpServer.ListenAndServe()
	}()

	select {
	case listenErr := <-listenErrors:
		if listenErr != nil && !errors.Is(listenErr, http.ErrServerClosed) {
			logger.Error(logMessageListenError, zap.Error(listenErr))
			return fmt.Errorf(wrappedErrorFormat, errMessageListenAndServe, listenErr)
		}
	case <-signalContext.Done():
		logger.Info(logMessageShutdownRequested)
		shutdownContext, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownContext); err != nil {
			return fmt.Errorf(wrappedErrorFormat, errMessageShutdown, err)
		}
	}

	logger.Info(logMessageServerStopped)
	return nil
}
