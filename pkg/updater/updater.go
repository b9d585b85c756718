// Package updater reconciles an installed browser driver with its browser.
//
// A run detects both installations, compares their main versions and, when
// the driver is stale, downloads the matching build from the family's
// catalog and replaces the driver binary in place.
package updater

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"driversync/pkg/catalog"
	fetchurldriver "driversync/pkg/driver/fetchurl"
	"driversync/pkg/driver/httpclient"
	"driversync/pkg/driver/process"
	"driversync/pkg/family"
	"driversync/pkg/logging"
	"driversync/pkg/semver"
	"driversync/pkg/subject"
)

// DefaultDownloadTimeout bounds a single archive download.
const DefaultDownloadTimeout = 10 * time.Minute

// Detector builds the browser and driver descriptors of a family.
type Detector interface {
	Browser(ctx context.Context, f family.Family) subject.Browser
	Driver(ctx context.Context, f family.Family) subject.Driver
}

// Resolver finds the download URL of a driver build.
type Resolver interface {
	Resolve(ctx context.Context, f family.Family, target string) (string, error)
}

// Fetcher performs hash-verified downloads.
type Fetcher interface {
	Fetch(ctx context.Context, opts fetchurldriver.FetchOptions) error
}

// Stopper terminates running driver processes.
type Stopper interface {
	Stop(ctx context.Context, name string) (int, error)
}

// Remover deletes work-directory artifacts.
type Remover interface {
	Remove(name string) error
	RemoveAll(path string) error
}

type osRemover struct{}

func (osRemover) Remove(name string) error    { return os.Remove(name) }
func (osRemover) RemoveAll(path string) error { return os.RemoveAll(path) }

type fetcherFunc func(ctx context.Context, opts fetchurldriver.FetchOptions) error

func (f fetcherFunc) Fetch(ctx context.Context, opts fetchurldriver.FetchOptions) error {
	return f(ctx, opts)
}

type stopperFunc func(ctx context.Context, name string) (int, error)

func (f stopperFunc) Stop(ctx context.Context, name string) (int, error) {
	return f(ctx, name)
}

// Options configures New.
type Options struct {
	// WorkDir receives the downloaded archive and its extracted files.
	WorkDir string
	// Force skips the version comparison and reinstalls the newest build.
	Force bool
	// SHA256, when set, is the expected digest of the archive.
	SHA256          string
	CatalogTimeout  time.Duration
	DownloadTimeout time.Duration
	// Progress receives the download progress bar; nil disables it.
	Progress io.Writer
}

// Updater runs reconciliation for one family at a time. Its collaborators
// are exported so they can be replaced.
type Updater struct {
	Detector Detector
	Resolver Resolver
	Client   *http.Client
	Fetcher  Fetcher
	Stopper  Stopper
	Remover  Remover

	WorkDir         string
	Force           bool
	SHA256          string
	DownloadTimeout time.Duration
	Progress        io.Writer
}

// New returns an Updater backed by the registered drivers.
func New(ctx context.Context, opts Options) *Updater {
	client, err := httpclient.Client(ctx)
	if err != nil {
		logging.GetLogger(ctx).Warn("http client driver unavailable, using default client", "error", err)
		client = http.DefaultClient
	}
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}
	return &Updater{
		Detector:        subject.NewDetector(),
		Resolver:        catalog.NewResolver(client, opts.CatalogTimeout),
		Client:          client,
		Fetcher:         fetcherFunc(fetchurldriver.Fetch),
		Stopper:         stopperFunc(process.Stop),
		Remover:         osRemover{},
		WorkDir:         workDir,
		Force:           opts.Force,
		SHA256:          opts.SHA256,
		DownloadTimeout: opts.DownloadTimeout,
		Progress:        opts.Progress,
	}
}

// Outcome is how a successful run ended.
type Outcome int

const (
	// OutcomeUpToDate means the installed driver already is the newest build.
	OutcomeUpToDate Outcome = iota
	// OutcomeUpdated means a new driver was installed.
	OutcomeUpdated
)

func (o Outcome) String() string {
	if o == OutcomeUpdated {
		return "updated"
	}
	return "up-to-date"
}

// Plan is the decision taken after detection and comparison.
type Plan struct {
	Family  family.Family
	Browser subject.Browser
	Driver  subject.Driver
	// URL is the resolved archive location.
	URL string
	// TargetVersion is the driver version embedded in URL.
	TargetVersion string
	UpToDate      bool
}

// Direction describes the planned change of the driver version.
func (p Plan) Direction() string {
	if p.UpToDate {
		return "none"
	}
	return semver.Direction(p.Driver.Version, p.TargetVersion)
}

// Result is the terminal success of a run.
type Result struct {
	Plan    Plan
	Outcome Outcome
	Message string
}

// Run reconciles the driver of f with its browser.
func (u *Updater) Run(ctx context.Context, f family.Family) (Result, error) {
	r := u.begin(ctx, f)
	plan, err := u.check(ctx, r, f)
	if err != nil {
		return Result{}, err
	}
	if plan.UpToDate {
		return Result{
			Plan:    plan,
			Outcome: OutcomeUpToDate,
			Message: fmt.Sprintf("%s and %s version match", f.DisplayName, f.DriverName),
		}, nil
	}
	if err := u.install(ctx, r, plan); err != nil {
		return Result{Plan: plan}, err
	}
	return Result{Plan: plan, Outcome: OutcomeUpdated, Message: "Finish"}, nil
}

// Check detects both installations and resolves the download URL without
// touching the filesystem.
func (u *Updater) Check(ctx context.Context, f family.Family) (Plan, error) {
	return u.check(ctx, u.begin(ctx, f), f)
}

func (u *Updater) check(ctx context.Context, r *run, f family.Family) (Plan, error) {
	browser := u.Detector.Browser(ctx, f)
	if !browser.Detected() {
		return Plan{}, r.abort(abort(NotDetected, r.state, nil, "%s version not found", f.DisplayName))
	}
	r.enter(BrowserDetected, "version", browser.Version)

	drv := u.Detector.Driver(ctx, f)
	if !drv.Located() {
		return Plan{}, r.abort(abort(NotDetected, r.state, nil, "%s driver path not found", f.DriverName))
	}
	if !drv.Detected() && !u.Force {
		return Plan{}, r.abort(abort(NotDetected, r.state, nil, "%s version not found", f.DriverName))
	}
	r.enter(DriverDetected, "version", drv.Version, "path", drv.Path)

	plan := Plan{Family: f, Browser: browser, Driver: drv}
	target := f.ResolutionTarget(browser.Version, browser.MainVersion)
	r.enter(VersionsCompared, "browser_main", browser.MainVersion, "driver_main", drv.MainVersion)

	if !u.Force && semver.SameMain(browser.MainVersion, drv.MainVersion) {
		url, err := u.Resolver.Resolve(ctx, f, target)
		if err != nil {
			return Plan{}, r.abort(abort(ResolutionFailed, r.state, err, "Update not executed"))
		}
		plan.URL = url
		plan.TargetVersion = urlVersion(f, url)
		if plan.TargetVersion == drv.Version {
			plan.UpToDate = true
			r.enter(UpToDate, "version", drv.Version)
			return plan, nil
		}
	}

	if plan.URL == "" {
		url, err := u.Resolver.Resolve(ctx, f, target)
		if err != nil {
			return Plan{}, r.abort(abort(ResolutionFailed, r.state, err, "get url failed"))
		}
		plan.URL = url
		plan.TargetVersion = urlVersion(f, url)
	}
	r.enter(NeedsUpdate, "url", plan.URL, "direction", plan.Direction())
	return plan, nil
}

// urlVersion reads the build version from the path below the download base.
func urlVersion(f family.Family, url string) string {
	return semver.FindVersion(strings.TrimPrefix(url, f.DownloadBase))
}

// run tracks the state of one reconciliation for logging.
type run struct {
	state  State
	logger *slog.Logger
}

func (u *Updater) begin(ctx context.Context, f family.Family) *run {
	return &run{
		state:  Start,
		logger: logging.GetLogger(ctx).With("family", f.ID),
	}
}

func (r *run) enter(s State, attrs ...any) {
	r.state = s
	r.logger.Debug("state "+s.String(), attrs...)
}

func (r *run) abort(err *Error) error {
	r.logger.Debug("state "+Aborted.String(), "at", err.State, "code", err.Code, "error", err.Detail())
	r.state = Aborted
	return err
}
