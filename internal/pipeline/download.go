package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/kazuki/runbridge/internal/archive"
	"github.com/kazuki/runbridge/internal/magicpod"
)

// ClientDownloader streams the api-client archive. *magicpod.Client
// satisfies it.
type ClientDownloader interface {
	DownloadClient(ctx context.Context, w io.Writer) (*magicpod.DownloadInfo, error)
}

// DownloadOptions holds everything the download flow needs.
type DownloadOptions struct {
	Downloader ClientDownloader
	Dest       string
	Logger     *zap.Logger
}

// Download fetches the api-client ZIP, verifies it, and extracts it
// into Dest. The archive is spooled through a temp file so a bad
// download never leaves partial state in Dest.
func Download(ctx context.Context, opts DownloadOptions) error {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	fmt.Println("Step 1/3: Downloading api-client archive...")
	tmp, err := os.CreateTemp("", "runbridge-client-*.zip")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	info, err := opts.Downloader.DownloadClient(ctx, tmp)
	closeErr := tmp.Close()
	if err != nil {
		return fmt.Errorf("download api-client: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("flush temp file: %w", closeErr)
	}

	log.Info("downloaded api-client archive",
		zap.Int("status", info.StatusCode),
		zap.String("content_type", info.ContentType),
		zap.Int64("bytes", info.ContentLength))
	if !info.LooksLikeArchive() {
		log.Warn("unexpected content type for client archive",
			zap.String("content_type", info.ContentType))
	}
	if info.TooSmall() {
		log.Warn("downloaded archive is suspiciously small",
			zap.Int64("bytes", info.ContentLength),
			zap.String("preview", info.Preview))
	}

	fmt.Println("Step 2/3: Verifying archive...")
	entries, err := archive.Inspect(tmpPath)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("  - %s (%d bytes)\n", e.Name, e.Size)
	}

	fmt.Printf("Step 3/3: Extracting to %s...\n", opts.Dest)
	if err := archive.Extract(tmpPath, opts.Dest); err != nil {
		return err
	}
	fmt.Printf("Extracted %d entries to %s.\n", len(entries), opts.Dest)
	return nil
}
