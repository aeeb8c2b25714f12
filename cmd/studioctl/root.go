package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/visualink/studio/internal/client"
	"github.com/visualink/studio/internal/media"
)

// app holds state shared by every subcommand.
type app struct {
	v        *viper.Viper
	log      *slog.Logger
	api      *client.Client
	uploader *client.Uploader
	pre      *media.Preprocessor
	profiles *media.ProfileLibrary
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "studioctl",
		Short:         "Publish and manage studio gallery media",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("api-url", "http://localhost:8080/api/v1", "studio API base URL")
	flags.String("admin-secret", "", "admin secret or session token")
	flags.String("profiles", "", "YAML file with extra or overridden transcode profiles")
	flags.String("work-dir", "", "directory for preprocessed files (default: system temp)")
	flags.Bool("verbose", false, "debug logging")
	_ = a.v.BindPFlags(flags)

	a.v.SetEnvPrefix("STUDIO")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newPublishCommand(a),
		newReplaceCommand(a),
		newRemoveCommand(a),
		newListCommand(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	a.v.SetConfigName("studioctl")
	a.v.SetConfigType("yaml")
	a.v.AddConfigPath("$HOME/.config/studio")
	a.v.AddConfigPath(".")
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	level := slog.LevelInfo
	if a.v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	secret := a.v.GetString("admin-secret")
	if secret == "" {
		return errors.New("admin secret is required (--admin-secret or STUDIO_ADMIN_SECRET)")
	}
	a.api = client.New(a.v.GetString("api-url"), secret, nil)
	a.uploader = client.NewUploader(nil)

	a.profiles = media.DefaultProfileLibrary()
	if path := a.v.GetString("profiles"); path != "" {
		lib, err := media.LoadProfileFile(path)
		if err != nil {
			return err
		}
		a.profiles = lib
	}
	a.pre = media.NewPreprocessor(a.v.GetString("work-dir"), a.log)
	return nil
}
