// Package upload copies local files into the object store, one file or a whole
// directory at a time with bounded concurrency.
package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/semaphore"

	"Ossctl/internal/errs"
	"Ossctl/internal/logger"
)

var errEmptyKey = errors.New("empty destination key")

// Putter stores one object and returns its ETag.
type Putter interface {
	PutObject(ctx context.Context, key string, body io.Reader, contentLength int64, contentType string) (string, error)
}

// Target is one local file and the key it is stored under.
type Target struct {
	LocalPath string
	RemoteKey string
	Size      int64
}

// Outcome is the result of one upload attempt. Err is nil on success.
type Outcome struct {
	Target Target
	ETag   string
	Err    error
}

func (o Outcome) Succeeded() bool { return o.Err == nil }

// Progress is emitted once per finished attempt, successful or not.
type Progress struct {
	Completed int
	Total     int
	Name      string
	Size      int64
	Err       error
}

// Reporter receives progress events. Report may be called from several
// goroutines at once.
type Reporter interface {
	Report(Progress)
}

type ReporterFunc func(Progress)

func (f ReporterFunc) Report(p Progress) { f(p) }

type Uploader struct {
	store    Putter
	workers  int
	reporter Reporter
}

// New returns an Uploader running at most workers puts at a time. Values
// below one mean one. reporter may be nil.
func New(store Putter, workers int, reporter Reporter) *Uploader {
	if workers < 1 {
		workers = 1
	}
	if reporter == nil {
		reporter = ReporterFunc(func(Progress) {})
	}
	return &Uploader{store: store, workers: workers, reporter: reporter}
}

func (u *Uploader) Workers() int { return u.workers }

// Upload stores src under dest. A directory is uploaded with UploadDirectory,
// anything else with UploadFile.
func (u *Uploader) Upload(ctx context.Context, src, dest string) ([]Outcome, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, errs.IO("stat source", err).WithKey(src)
	}
	if info.IsDir() {
		return u.UploadDirectory(ctx, src, dest)
	}
	out, err := u.UploadFile(ctx, src, dest)
	if err != nil {
		return nil, err
	}
	return []Outcome{out}, nil
}

// UploadFile stores one file under remoteKey, or under remoteKey plus the file
// name when remoteKey ends in a slash. Unlike a directory upload a failure is
// returned as the error.
func (u *Uploader) UploadFile(ctx context.Context, localPath, remoteKey string) (Outcome, error) {
	if remoteKey == "" {
		return Outcome{}, errs.Input("upload", errEmptyKey)
	}
	if strings.HasSuffix(remoteKey, "/") {
		remoteKey += filepath.Base(localPath)
	}
	info, err := os.Stat(localPath)
	if err != nil {
		return Outcome{}, errs.IO("stat source", err).WithKey(localPath)
	}
	out := u.put(ctx, Target{LocalPath: localPath, RemoteKey: remoteKey, Size: info.Size()})
	u.reporter.Report(Progress{Completed: 1, Total: 1, Name: filepath.Base(localPath), Size: info.Size(), Err: out.Err})
	if out.Err != nil {
		return out, out.Err
	}
	return out, nil
}

// Targets lists the regular files directly inside sourceDir. Each key is
// targetPrefix followed by the file name, with no separator added.
func Targets(sourceDir, targetPrefix string) ([]Target, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, errs.IO("read source directory", err).WithKey(sourceDir)
	}
	targets := make([]Target, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			logger.Log.Warn().Err(err).Str("file", e.Name()).Msg("skipping file")
			continue
		}
		targets = append(targets, Target{
			LocalPath: filepath.Join(sourceDir, e.Name()),
			RemoteKey: targetPrefix + e.Name(),
			Size:      info.Size(),
		})
	}
	return targets, nil
}

// UploadDirectory uploads every regular file directly inside sourceDir.
// Per-file failures are recorded in the returned outcomes, which follow
// enumeration order; the error is non-nil only if the directory cannot be read.
func (u *Uploader) UploadDirectory(ctx context.Context, sourceDir, targetPrefix string) ([]Outcome, error) {
	targets, err := Targets(sourceDir, targetPrefix)
	if err != nil {
		return nil, err
	}
	return u.UploadTargets(ctx, targets), nil
}

// UploadTargets uploads targets concurrently and returns one outcome per target.
func (u *Uploader) UploadTargets(ctx context.Context, targets []Target) []Outcome {
	total := len(targets)
	outcomes := make([]Outcome, total)
	sem := semaphore.NewWeighted(int64(u.workers))
	var completed atomic.Int64
	var wg sync.WaitGroup

	finish := func(i int, out Outcome) {
		outcomes[i] = out
		n := completed.Add(1)
		if out.Err != nil {
			logger.Log.Warn().Err(out.Err).Str("file", out.Target.LocalPath).Msg("upload failed")
		}
		u.reporter.Report(Progress{
			Completed: int(n),
			Total:     total,
			Name:      filepath.Base(out.Target.LocalPath),
			Size:      out.Target.Size,
			Err:       out.Err,
		})
	}

	for i, t := range targets {
		if err := sem.Acquire(ctx, 1); err != nil {
			finish(i, Outcome{Target: t, Err: errs.IO("upload", err).WithKey(t.LocalPath)})
			continue
		}
		wg.Add(1)
		go func(i int, t Target) {
			defer wg.Done()
			defer sem.Release(1)
			finish(i, u.put(ctx, t))
		}(i, t)
	}
	wg.Wait()
	return outcomes
}

func (u *Uploader) put(ctx context.Context, t Target) Outcome {
	f, err := os.Open(t.LocalPath)
	if err != nil {
		return Outcome{Target: t, Err: errs.IO("open", err).WithKey(t.LocalPath)}
	}
	defer f.Close()

	contentType, err := detectContentType(f)
	if err != nil {
		return Outcome{Target: t, Err: errs.IO("read", err).WithKey(t.LocalPath)}
	}
	etag, err := u.store.PutObject(ctx, t.RemoteKey, f, t.Size, contentType)
	if err != nil {
		return Outcome{Target: t, Err: err}
	}
	return Outcome{Target: t, ETag: etag}
}

// detectContentType sniffs the head of f and rewinds it.
func detectContentType(f io.ReadSeeker) (string, error) {
	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mtype.String(), nil
}

// Failed returns the outcomes that did not succeed.
func Failed(outcomes []Outcome) []Outcome {
	var failed []Outcome
	for _, o := range outcomes {
		if !o.Succeeded() {
			failed = append(failed, o)
		}
	}
	return failed
}
