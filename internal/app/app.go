package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/time/rate"

	"folio/internal/config"
	"folio/internal/encryption"
	"folio/internal/folio"
	"folio/internal/imageref"
	"folio/internal/medium"
	"folio/internal/notify"
	"folio/internal/schedule"
)

// FolioApp is the application layer between the CLI and RecordService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string input, and releases the medium on Close.
type FolioApp struct {
	cfg     *config.Config
	medium  folio.Medium
	service *folio.RecordService
	logger  folio.Logger
	logFile *os.File
}

// NewFolioApp creates a fully wired FolioApp from the given config.
// The caller must call Close when done.
func NewFolioApp(ctx context.Context, cfg *config.Config, session *Session) (*FolioApp, error) {
	logger, logFile, err := newLogger(cfg.LogDir, cfg.LogFormat, cfg.LogLevel, session.LogID())
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	a, err := newFolioApp(ctx, cfg, logger)
	if err != nil {
		logFile.Close()
		return nil, err
	}
	a.logFile = logFile
	return a, nil
}

func newFolioApp(ctx context.Context, cfg *config.Config, logger folio.Logger) (*FolioApp, error) {
	m, err := medium.NewMediumFromConfig(ctx, cfg.Medium)
	if err != nil {
		return nil, fmt.Errorf("creating medium: %w", err)
	}

	if err := m.ValidateSetup(ctx); err != nil {
		m.Close()
		return nil, fmt.Errorf("medium not usable: %w", err)
	}

	sealer, err := encryption.NewSealerFromConfig(cfg.Encryption)
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("creating sealer: %w", err)
	}

	store := folio.NewDocumentStore(m, sealer, logger)
	svc := folio.NewRecordService(ctx, store, serviceConfig(cfg), logger, folio.RealClock{}, folio.UUIDGenerator{})

	return &FolioApp{
		cfg:     cfg,
		medium:  m,
		service: svc,
		logger:  logger,
	}, nil
}

func serviceConfig(cfg *config.Config) folio.ServiceConfig {
	sc := folio.ServiceConfig{
		Latency: folio.Latency{
			Fetch:  cfg.Latency.Fetch.Std(),
			Save:   cfg.Latency.Save.Std(),
			Delete: cfg.Latency.Delete.Std(),
			Submit: cfg.Latency.Submit.Std(),
			Status: cfg.Latency.Status.Std(),
		},
		SeedProjects: seedProjects(cfg.SeedProjects),
	}

	if perMinute := cfg.Contact.SubmitsPerMinute; perMinute > 0 {
		burst := max(cfg.Contact.SubmitBurst, 1)
		sc.SubmitLimiter = rate.NewLimiter(rate.Limit(perMinute/60), burst)
	}
	return sc
}

func seedProjects(seeds []config.SeedProject) []folio.Project {
	out := make([]folio.Project, len(seeds))
	for i, s := range seeds {
		out[i] = folio.Project{
			ID:           s.ID,
			Title:        s.Title,
			Description:  s.Description,
			Technologies: folio.NormalizeTechnologies(s.Technologies),
			LiveURL:      s.LiveURL,
			GithubURL:    s.GithubURL,
			ProjectImage: folio.ImageRef(s.ProjectImage),
			BannerImage:  folio.ImageRef(s.BannerImage),
			CreatedAt:    s.CreatedAt,
			UpdatedAt:    s.CreatedAt,
		}
	}
	return out
}

// Service returns the underlying RecordService.
func (a *FolioApp) Service() *folio.RecordService {
	return a.service
}

// ProjectForm is the raw project input of the CLI. Nil fields are left
// unchanged on update. Technologies is a comma-separated list; images are
// URLs, data: URLs or paths to image files, and an empty string clears them.
type ProjectForm struct {
	ID           string
	Title        *string
	Description  *string
	Technologies *string
	LiveURL      *string
	GithubURL    *string
	ProjectImage *string
	BannerImage  *string
}

// SaveProject converts the form and creates or updates a project.
func (a *FolioApp) SaveProject(ctx context.Context, form ProjectForm) (*folio.Project, error) {
	in := folio.ProjectInput{
		ID:          form.ID,
		Title:       form.Title,
		Description: form.Description,
		LiveURL:     form.LiveURL,
		GithubURL:   form.GithubURL,
	}
	if form.Technologies != nil {
		tech := folio.TechList(folio.SplitTechnologies(*form.Technologies))
		in.Technologies = &tech
	}

	var err error
	if in.ProjectImage, err = imageArg(form.ProjectImage); err != nil {
		return nil, fmt.Errorf("project image: %w", err)
	}
	if in.BannerImage, err = imageArg(form.BannerImage); err != nil {
		return nil, fmt.Errorf("banner image: %w", err)
	}

	return a.service.SaveProject(ctx, in)
}

func imageArg(arg *string) (*folio.ImageRef, error) {
	if arg == nil {
		return nil, nil
	}
	if *arg == "" {
		return folio.Ptr(folio.ImageRef("")), nil
	}
	ref, err := imageref.FromArg(*arg)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// SearchProjects returns the projects matching facet and term, newest first.
func (a *FolioApp) SearchProjects(ctx context.Context, facet, term string) ([]folio.Project, error) {
	projects, err := a.service.FetchAllProjects(ctx)
	if err != nil {
		return nil, err
	}
	return folio.FilterProjects(projects, facet, term), nil
}

// Facets returns the technology facets of the current projects.
func (a *FolioApp) Facets(ctx context.Context) ([]string, error) {
	projects, err := a.service.FetchAllProjects(ctx)
	if err != nil {
		return nil, err
	}
	return folio.TechnologyFacets(projects), nil
}

// Contacts returns the contact messages matching the named filter, newest first.
func (a *FolioApp) Contacts(ctx context.Context, filter string) ([]folio.Contact, error) {
	f, err := folio.ParseContactFilter(filter)
	if err != nil {
		return nil, err
	}
	contacts, err := a.service.FetchAllContacts(ctx)
	if err != nil {
		return nil, err
	}
	return folio.FilterContacts(contacts, f), nil
}

// SetProfileImage stores the image named by arg (URL, data: URL or file path).
func (a *FolioApp) SetProfileImage(ctx context.Context, arg string) error {
	ref, err := imageref.FromArg(arg)
	if err != nil {
		return fmt.Errorf("profile image: %w", err)
	}
	return a.service.SetProfileImage(ctx, ref)
}

// WatchOptions configures Watch.
type WatchOptions struct {
	Out     io.Writer // notifications and count updates
	In      *os.File  // answers to the permission prompt
	OnCount func(count int)
}

// Watch runs the unread poller until ctx is cancelled.
func (a *FolioApp) Watch(ctx context.Context, opts WatchOptions) error {
	perm, err := folio.ParsePermission(a.cfg.Notify.Permission)
	if err != nil {
		return err
	}

	notifier := notify.NewTerminalNotifier(opts.Out, perm, notify.TTYPrompt(opts.In, opts.Out))
	focus := notify.StaticFocus(a.cfg.Notify.AssumeFocused)
	sched := schedule.NewCronScheduler(a.logger)

	counter := storedUnreadCounter{ctx: ctx, service: a.service}
	poller := folio.NewPoller(counter, notifier, focus, sched, folio.PollerConfig{
		Interval: a.cfg.Notify.Interval.Std(),
		OnCount:  opts.OnCount,
	}, a.logger)

	h, err := poller.Start(ctx)
	if err != nil {
		return err
	}
	defer h.Stop()

	<-ctx.Done()
	return nil
}

// storedUnreadCounter counts unread messages from the stored collection,
// which other processes write to while Watch runs.
type storedUnreadCounter struct {
	ctx     context.Context
	service *folio.RecordService
}

func (c storedUnreadCounter) UnreadCount() int {
	c.service.ReloadContacts(c.ctx)
	return c.service.UnreadCount()
}

// Close releases the medium and the log file.
func (a *FolioApp) Close() error {
	var firstErr error
	if err := a.medium.Close(); err != nil {
		firstErr = fmt.Errorf("closing medium: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
