package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jaki95/set-ripper/config"
	"github.com/jaki95/set-ripper/internal/audio"
	"github.com/jaki95/set-ripper/internal/downloader"
	"github.com/jaki95/set-ripper/internal/progress"
	"github.com/jaki95/set-ripper/internal/ripper"
	"github.com/jaki95/set-ripper/internal/storage"
)

const defaultConfigPath = "config/config.yaml"

var errUsage = errors.New("Usage: ripper --id=[video id]")

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	verbose    bool
	stdout     io.Writer
	stderr     io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	flags := &globalFlags{stdout: stdout, stderr: stderr}
	var id string
	var dryRun bool

	rootCmd := &cobra.Command{
		Use:           "ripper",
		Short:         "Cut a long recording into tagged tracks",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				return errUsage
			}

			cfg, err := flags.setup()
			if err != nil {
				return err
			}

			return runRip(cmd, flags, cfg, ripper.Options{ID: id, DryRun: dryRun})
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.Flags().StringVarP(&id, "id", "v", "", "Video id of the source recording")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the transcoder commands without running anything")
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "Enable debug logging")

	rootCmd.AddCommand(newImportCommand(flags))
	rootCmd.AddCommand(newCheckCommand(flags))

	return rootCmd
}

// setup loads the configuration and installs the logger for this run.
func (f *globalFlags) setup() (*config.Config, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}

	if f.verbose {
		cfg.LogLevel = int(slog.LevelDebug)
	}

	logger := slog.New(slog.NewTextHandler(f.stderr, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger.With("run", uuid.NewString()))

	return cfg, nil
}

func (f *globalFlags) loadConfig() (*config.Config, error) {
	path := f.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err != nil {
			return config.Default(), nil
		}
		path = defaultConfigPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runRip(cmd *cobra.Command, flags *globalFlags, cfg *config.Config, opts ripper.Options) error {
	ctx := cmd.Context()

	tracker := progress.NewProgressTracker()
	tracker.AddListener(progress.NewConsole(flags.stdout).Handle)

	deps := ripper.Dependencies{
		Storage: storage.NewLocalFileStorage(cfg.Paths.DataDir, cfg.Paths.DownloadsDir, cfg.Paths.OutputDir),
		Downloader: downloader.NewYTDLPDownloader(downloader.Options{
			Command:             cfg.Downloader.Command,
			AudioFormat:         cfg.Downloader.AudioFormat,
			AudioQuality:        cfg.Downloader.AudioQuality,
			PreferFreeFormats:   cfg.Downloader.PreferFreeFormats != nil && *cfg.Downloader.PreferFreeFormats,
			NoCheckCertificates: cfg.Downloader.NoCheckCertificates != nil && *cfg.Downloader.NoCheckCertificates,
			Headers:             cfg.Downloader.Headers,
		}),
		Audio:   audio.NewFFMPEGEngine(cfg.Transcoder.Command),
		Tracker: tracker,
	}

	if cfg.TaggingEnabled() {
		deps.Tagger = audio.NewTagger()
	}

	if cfg.Storage.Type == config.StorageGCS && !opts.DryRun {
		publisher, err := storage.NewGCSPublisher(ctx, cfg.Storage.Bucket, cfg.Storage.Prefix, cfg.Storage.CredentialsFile)
		if err != nil {
			return err
		}
		defer publisher.Close()
		deps.Publisher = publisher
	}

	result, err := ripper.NewProcessor(cfg, deps).Run(ctx, opts)
	if err != nil {
		return err
	}

	for _, command := range result.Planned {
		fmt.Fprintln(flags.stdout, command)
	}

	return nil
}
