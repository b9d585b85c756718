package updater

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	fetchurldriver "driversync/pkg/driver/fetchurl"

	"github.com/schollz/progressbar/v3"
)

func (u *Updater) install(ctx context.Context, r *run, p Plan) error {
	f := p.Family
	archive := filepath.Join(u.WorkDir, f.ArchiveName())

	if err := u.download(ctx, r, p.URL, archive); err != nil {
		return r.abort(err)
	}
	r.enter(Downloaded, "archive", archive)
	r.logger.Info("downloaded driver archive", "url", p.URL, "version", p.TargetVersion)

	if err := verifyArchive(archive, f.ExtractedBinary); err != nil {
		if rmErr := u.remover().Remove(archive); rmErr != nil {
			r.logger.Warn("failed to remove rejected archive", "archive", archive, "error", rmErr)
		}
		return r.abort(abort(TransportFailed, r.state, err, "archive verification failed"))
	}
	r.enter(Verified)

	if err := unzip(archive, u.WorkDir); err != nil {
		return r.abort(abort(FilesystemOpFailed, r.state, err, "%s unzip failed", f.DriverName))
	}
	r.enter(Extracted, "dir", u.WorkDir)

	u.stop(ctx, r, f.DriverName)
	r.enter(Stopped)

	src := filepath.Join(u.WorkDir, filepath.FromSlash(f.ExtractedBinary))
	if err := replaceFile(src, p.Driver.Path); err != nil {
		return r.abort(abort(FilesystemOpFailed, r.state, err, "%s copy failed", f.DriverName))
	}
	r.enter(Installed, "path", p.Driver.Path)
	r.logger.Info("installed driver", "path", p.Driver.Path, "from", p.Driver.Version, "to", p.TargetVersion, "direction", p.Direction())

	if err := u.cleanup(r, p, archive); err != nil {
		return r.abort(err)
	}
	r.enter(CleanedUp)
	r.enter(Done)
	return nil
}

func (u *Updater) download(ctx context.Context, r *run, url, dest string) *Error {
	timeout := u.DownloadTimeout
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := os.Create(dest)
	if err != nil {
		return abort(FilesystemOpFailed, r.state, err, "download file failed")
	}

	if u.SHA256 != "" {
		err = u.fetchVerified(ctx, r, url, out)
	} else {
		err = u.fetchDirect(ctx, r, url, filepath.Base(dest), out)
	}
	closeErr := out.Close()

	if err != nil || closeErr != nil {
		if rmErr := u.remover().Remove(dest); rmErr != nil && !os.IsNotExist(rmErr) {
			r.logger.Warn("failed to remove partial archive", "archive", dest, "error", rmErr)
		}
	}
	if err != nil {
		return abort(TransportFailed, r.state, err, "download file failed")
	}
	if closeErr != nil {
		return abort(FilesystemOpFailed, r.state, closeErr, "download file failed")
	}
	return nil
}

func (u *Updater) fetchVerified(ctx context.Context, r *run, url string, out io.Writer) error {
	if u.Fetcher == nil {
		return fmt.Errorf("no hash-verifying fetcher configured")
	}
	r.logger.Debug("downloading with fetchurl", "url", url, "sha256", u.SHA256)
	return u.Fetcher.Fetch(ctx, fetchurldriver.FetchOptions{
		URLs: []string{url},
		Algo: "sha256",
		Hash: u.SHA256,
		Out:  out,
	})
}

func (u *Updater) fetchDirect(ctx context.Context, r *run, url, name string, out io.Writer) error {
	r.logger.Debug("downloading directly", "url", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("download returned %s", resp.Status)
	}

	w := out
	if u.Progress != nil {
		bar := progressbar.NewOptions64(
			resp.ContentLength,
			progressbar.OptionSetWriter(u.Progress),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetDescription(name),
			progressbar.OptionThrottle(80*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(u.Progress)
			}),
		)
		defer bar.Finish()
		w = io.MultiWriter(out, bar)
	}

	_, err = io.Copy(w, resp.Body)
	return err
}

func (u *Updater) stop(ctx context.Context, r *run, name string) {
	if u.Stopper == nil {
		return
	}
	n, err := u.Stopper.Stop(ctx, name)
	if err != nil {
		r.logger.Warn("could not stop running driver", "driver", name, "code", ProcessStopFailed, "error", err)
		return
	}
	if n > 0 {
		r.logger.Info("stopped running driver", "driver", name, "count", n)
	}
}

func (u *Updater) cleanup(r *run, p Plan, archive string) *Error {
	name := p.Family.DriverName
	rm := u.remover()

	if err := rm.Remove(archive); err != nil {
		return abort(FilesystemOpFailed, r.state, err, "%s temp file delete failed", name)
	}
	for _, rel := range p.Family.CleanupPaths {
		target := filepath.Join(u.WorkDir, filepath.FromSlash(rel))
		if samePath(target, p.Driver.Path) {
			r.logger.Debug("cleanup skips installed driver", "path", target)
			continue
		}
		if err := rm.RemoveAll(target); err != nil {
			return abort(FilesystemOpFailed, r.state, err, "%s temp path delete failed", name)
		}
	}
	return nil
}

func (u *Updater) remover() Remover {
	if u.Remover == nil {
		return osRemover{}
	}
	return u.Remover
}

// verifyArchive checks that archive is a readable zip containing binary.
func verifyArchive(archive, binary string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("not a zip archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if path.Clean(f.Name) == binary {
			return nil
		}
	}
	return fmt.Errorf("%s not found in %s", binary, filepath.Base(archive))
}

func unzip(src, dest string) error {
	dest, err := filepath.Abs(dest)
	if err != nil {
		return err
	}

	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		fpath := filepath.Join(dest, f.Name)

		if !strings.HasPrefix(fpath, dest+string(os.PathSeparator)) {
			return fmt.Errorf("illegal file path: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(fpath, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
			return err
		}
		if err := extractFile(f, fpath); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, fpath string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	outFile, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode()|0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(outFile, rc); err != nil {
		outFile.Close()
		return err
	}
	return outFile.Close()
}

// replaceFile copies src next to dst and renames it into place, so dst is
// never left half written.
func replaceFile(src, dst string) error {
	if samePath(src, dst) {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	if runtime.GOOS == "windows" {
		return strings.EqualFold(absA, absB)
	}
	return absA == absB
}
