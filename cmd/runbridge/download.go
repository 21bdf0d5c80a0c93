package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kazuki/runbridge/internal/magicpod"
	"github.com/kazuki/runbridge/internal/pipeline"
)

var downloadCommand = &cobra.Command{
	Use:   "download",
	Short: "Download and extract the MagicPod api-client",
	Long: `Downloads the api-client ZIP from the MagicPod API, verifies that it
is a readable archive, and extracts it into the target directory.`,
	RunE: runDownload,
}

var downloadDest string

func init() {
	downloadCommand.Flags().StringVarP(&downloadDest, "dest", "d", "magicpod-api-client", "Directory to extract the client into")
	rootCmd.AddCommand(downloadCommand)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateMagicPodToken(); err != nil {
		return err
	}

	log := newLogger(cfg)
	defer log.Sync() //nolint:errcheck // stderr sync failure is uninteresting

	mp, err := magicpod.NewClient(cfg.MagicPod.APIToken, cfg.MagicPod.Organization, cfg.MagicPod.Project, nil)
	if err != nil {
		return err
	}

	return pipeline.Download(context.Background(), pipeline.DownloadOptions{
		Downloader: mp,
		Dest:       downloadDest,
		Logger:     log,
	})
}
