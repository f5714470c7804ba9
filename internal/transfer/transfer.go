package transfer

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Transfer moves files and directories for site provisioning: cached
// asset downloads, bulk directory copies, and archive extraction.
type Transfer struct {
	client *http.Client
	logger *logrus.Entry
}

// Config configures a Transfer.
type Config struct {
	DownloadTimeout time.Duration
	Logger          *logrus.Entry
}

// New creates a Transfer.
func New(cfg Config) *Transfer {
	timeout := cfg.DownloadTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Transfer{
		client: &http.Client{Timeout: timeout},
		logger: logger.WithField("component", "transfer"),
	}
}

// DownloadIfAbsent streams a remote resource to dest unless dest
// already exists. The download lands in a temp file first so a failed
// transfer never leaves a truncated asset in the cache.
func (t *Transfer) DownloadIfAbsent(ctx context.Context, url, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		t.logger.WithField("path", dest).Debug("asset already cached")
		return nil
	}

	t.logger.WithField("url", url).Infof("downloading %s", filepath.Base(dest))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request for %s: %w", url, err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to download %s: server returned %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move download into place: %w", err)
	}
	return nil
}

// Copy copies source into dest, creating dest when absent. A file
// source is copied into dest and (fileName, sourceDir) is returned. A
// directory source has every immediate child copied concurrently;
// Copy returns only after all children finished, and any child failure
// fails the whole operation.
func (t *Transfer) Copy(source, dest string) (string, string, error) {
	info, err := os.Stat(source)
	if err != nil {
		return "", "", fmt.Errorf("failed to stat %s: %w", source, err)
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create destination %s: %w", dest, err)
	}

	if !info.IsDir() {
		fileName := filepath.Base(source)
		if err := copyFile(source, filepath.Join(dest, fileName)); err != nil {
			return "", "", fmt.Errorf("failed to copy %s: %w", source, err)
		}
		return fileName, filepath.Dir(source), nil
	}

	entries, err := os.ReadDir(source)
	if err != nil {
		return "", "", fmt.Errorf("failed to read directory %s: %w", source, err)
	}

	var g errgroup.Group
	for _, entry := range entries {
		src := filepath.Join(source, entry.Name())
		dst := filepath.Join(dest, entry.Name())
		isDir := entry.IsDir()
		g.Go(func() error {
			if isDir {
				return copyTree(src, dst)
			}
			return copyFile(src, dst)
		})
	}
	if err := g.Wait(); err != nil {
		return "", "", fmt.Errorf("failed to copy %s into %s: %w", source, dest, err)
	}

	return "", source, nil
}

// ReplaceDir removes dest entirely and copies source in its place.
// Used when a restore must swap a whole content directory.
func (t *Transfer) ReplaceDir(source, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		if err := os.RemoveAll(dest); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dest, err)
		}
	}
	if err := copyTree(source, dest); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", source, dest, err)
	}
	return nil
}

// Extract decompresses a zip archive into destDir.
func (t *Transfer) Extract(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer r.Close()

	for _, f := range r.File {
		fpath := filepath.Join(destDir, f.Name)

		// Guard against entries escaping the destination.
		if !strings.HasPrefix(fpath, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive %s contains illegal path %q", archivePath, f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(fpath, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", fpath, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(fpath), err)
		}

		outFile, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", fpath, err)
		}

		rc, err := f.Open()
		if err != nil {
			outFile.Close()
			return fmt.Errorf("failed to read archive entry %s: %w", f.Name, err)
		}

		_, err = io.Copy(outFile, rc)
		outFile.Close()
		rc.Close()

		if err != nil {
			return fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func copyTree(src, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		destPath := filepath.Join(dest, entry.Name())
		if entry.IsDir() {
			if err := copyTree(srcPath, destPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, destPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		return err
	}
	return destFile.Close()
}
