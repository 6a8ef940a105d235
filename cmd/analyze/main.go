package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/f-sync/socialstats/internal/config"
	"github.com/f-sync/socialstats/internal/engine"
	"github.com/f-sync/socialstats/internal/report"
)

const (
	commandUse                = "analyze [archive...]"
	commandShortDescription   = "Analyze Instagram and Twitter/X data exports"
	commandLongDescription    = "Each archive is an export directory or a .zip file. Reports are written to stdout in argument order."
	envPrefix                 = "SOCIALSTATS"
	flagFormatDescription     = "Report format: text or json"
	flagTopDescription        = "Length of the conversation rankings"
	flagTimezoneDescription   = "IANA timezone used for time of day statistics (default local)"
	flagCategoriesDescription = "YAML file overriding the topic and interest category tables"
	flagNoColorDescription    = "Disable colored text output"
	flagConcurrencyDesc       = "Number of archives analyzed at once"
	flagConfigName            = "config"
	flagConfigDescription     = "Config file (YAML, TOML or JSON)"
	flagDebugName             = "debug"
	flagDebugDescription      = "Enable development logging including parse progress"
	errMessageLoggerCreate    = "create logger"
	errMessageArchivesFailed  = "archives failed"
	wrappedErrorFormat        = "%s: %w"
	archiveErrorFormat        = "error: %s: %v\n"
	writeOutputErrorFormat    = "write report: %w"
	archivesFailedErrorFormat = "%w: %d of %d"
	logMessageArchiveFailed   = "archive analysis failed"
	logMessageProgress        = "parse progress"
	logFieldArchive           = "archive"
	logFieldPercent           = "percent"
)

func main() {
	cobra.CheckErr(newAnalyzeCommand().Execute())
}

func newAnalyzeCommand() *cobra.Command {
	command := &cobra.Command{
		Use:          commandUse,
		Short:        commandShortDescription,
		Long:         commandLongDescription,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE:         runAnalyzeCommand,
	}

	command.Flags().String(config.KeyFormat, report.FormatText, flagFormatDescription)
	command.Flags().Int(config.KeyTop, 0, flagTopDescription)
	command.Flags().String(config.KeyTimezone, "", flagTimezoneDescription)
	command.Flags().String(config.KeyCategoriesFile, "", flagCategoriesDescription)
	command.Flags().Bool(config.KeyNoColor, false, flagNoColorDescription)
	command.Flags().Int(config.KeyConcurrency, config.DefaultConcurrency, flagConcurrencyDesc)
	command.Flags().String(flagConfigName, "", flagConfigDescription)
	command.Flags().Bool(flagDebugName, false, flagDebugDescription)

	for _, flagName := range []string{config.KeyFormat, config.KeyTop, config.KeyTimezone, config.KeyCategoriesFile, config.KeyNoColor, config.KeyConcurrency, flagDebugName} {
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

func runAnalyzeCommand(command *cobra.Command, archivePaths []string) error {
	configPath, _ := command.Flags().GetString(flagConfigName)
	if err := config.ReadFile(viper.GetViper(), configPath); err != nil {
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

	application := NewAnalyzeApplicationWithDependencies(AnalyzeDependencies{
		Analyzer: engine.NewAnalyzer(engine.Options{
			Logger:   logger,
			Location: analysisConfig.Location,
			TopN:     analysisConfig.TopN,
			Tables:   &analysisConfig.Tables,
		}),
		Logger: logger,
		Stdout: command.OutOrStdout(),
		Stderr: command.ErrOrStderr(),
	})
	return application.Run(command.Context(), AnalyzeConfiguration{
		ArchivePaths: archivePaths,
		Format:       analysisConfig.Format,
		Color:        report.ColorEnabled(command.OutOrStdout(), analysisConfig.NoColor),
		Concurrency:  analysisConfig.Concurrency,
	})
}
