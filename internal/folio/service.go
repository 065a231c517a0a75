package folio

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ContactReceiptMessage is the acknowledgment returned to a visitor.
const ContactReceiptMessage = "Thanks for reaching out! I'll get back to you soon."

// ServiceConfig holds the tunables of a RecordService.
type ServiceConfig struct {
	Latency Latency

	// SeedProjects are served when no project document is stored yet.
	SeedProjects []Project

	// SubmitLimiter throttles SubmitContact when set. It is charged with
	// the stored contacts on construction.
	SubmitLimiter *rate.Limiter
}

// RecordService is the mock remote API over the project and contact
// collections. It is the only writer of the collection documents.
//
// Every method except UnreadCount waits for the configured latency before
// touching any state. Writes to one collection are serialized; the full
// collection is persisted after every mutation.
type RecordService struct {
	store   *DocumentStore
	latency Latency
	sim     *LatencySimulator
	limiter *rate.Limiter
	logger  Logger
	clock   Clock
	idgen   IDGenerator

	projectsMu sync.RWMutex
	projects   []Project

	contactsMu sync.RWMutex
	contacts   []Contact

	profileMu sync.Mutex
}

// NewRecordService creates a RecordService and loads both collections from store.
func NewRecordService(ctx context.Context, store *DocumentStore, cfg ServiceConfig, logger Logger, clock Clock, idgen IDGenerator) *RecordService {
	seed := make([]Project, len(cfg.SeedProjects))
	for i, p := range cfg.SeedProjects {
		seed[i] = p.clone()
	}

	s := &RecordService{
		store:    store,
		latency:  cfg.Latency,
		sim:      NewLatencySimulator(clock),
		limiter:  cfg.SubmitLimiter,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
		projects: LoadDocument(ctx, store, ProjectsKey, seed),
		contacts: LoadDocument(ctx, store, ContactsKey, []Contact{}),
	}
	if s.projects == nil {
		s.projects = []Project{}
	}
	if s.contacts == nil {
		s.contacts = []Contact{}
	}

	if s.limiter != nil {
		s.replaySubmissions()
	}

	logger.Debug("collections loaded", "projects", len(s.projects), "contacts", len(s.contacts))
	return s
}

// replaySubmissions charges the submit limiter with the stored contacts,
// oldest first, so its budget carries over between processes.
func (s *RecordService) replaySubmissions() {
	times := make([]time.Time, len(s.contacts))
	for i, c := range s.contacts {
		times[i] = c.CreatedAt
	}
	slices.SortFunc(times, time.Time.Compare)
	for _, t := range times {
		s.limiter.AllowN(t, 1)
	}
}

// FetchAllProjects returns every project, newest first.
func (s *RecordService) FetchAllProjects(ctx context.Context) ([]Project, error) {
	if err := s.sim.Wait(ctx, s.latency.Fetch); err != nil {
		return nil, err
	}

	s.projectsMu.RLock()
	defer s.projectsMu.RUnlock()

	out := make([]Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = p.clone()
	}
	slices.SortStableFunc(out, func(a, b Project) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

// SaveProject creates a project when in.ID is empty, otherwise merges the
// supplied fields onto the stored project with that ID.
// It returns the stored record. If the collection could not be persisted the
// record is still returned, together with a *StorageFault.
func (s *RecordService) SaveProject(ctx context.Context, in ProjectInput) (*Project, error) {
	if err := s.sim.Wait(ctx, s.latency.Save); err != nil {
		return nil, err
	}

	s.projectsMu.Lock()
	defer s.projectsMu.Unlock()

	now := s.clock.Now()
	var saved Project

	if in.ID == "" {
		saved = Project{
			ID:           s.newID(s.hasProject),
			Technologies: []string{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		in.applyTo(&saved)
		s.projects = slices.Insert(s.projects, 0, saved)
		s.logger.Info("project created", "id", saved.ID, "title", saved.Title)
	} else {
		i := s.projectIndex(in.ID)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, in.ID)
		}
		saved = s.projects[i].clone()
		in.applyTo(&saved)
		saved.UpdatedAt = now
		s.projects[i] = saved
		s.logger.Info("project updated", "id", saved.ID)
	}

	out := saved.clone()
	return &out, s.persistProjects(ctx)
}

// DeleteProject removes the project with the given ID. Unknown IDs are ignored.
func (s *RecordService) DeleteProject(ctx context.Context, id string) error {
	if err := s.sim.Wait(ctx, s.latency.Delete); err != nil {
		return err
	}

	s.projectsMu.Lock()
	defer s.projectsMu.Unlock()

	i := s.projectIndex(id)
	if i < 0 {
		s.logger.Debug("project not found, nothing to delete", "id", id)
		return nil
	}
	s.projects = slices.Delete(s.projects, i, i+1)
	s.logger.Info("project deleted", "id", id)
	return s.persistProjects(ctx)
}

// ProfileImage returns the stored profile image, or "" if none was set.
func (s *RecordService) ProfileImage(ctx context.Context) (ImageRef, error) {
	if err := s.sim.Wait(ctx, s.latency.Fetch); err != nil {
		return "", err
	}

	s.profileMu.Lock()
	defer s.profileMu.Unlock()
	return LoadDocument(ctx, s.store, ProfileImageKey, ImageRef("")), nil
}

// ClearProfileImage removes the stored profile image.
func (s *RecordService) ClearProfileImage(ctx context.Context) error {
	if err := s.sim.Wait(ctx, s.latency.Delete); err != nil {
		return err
	}

	s.profileMu.Lock()
	defer s.profileMu.Unlock()
	return s.store.Delete(context.WithoutCancel(ctx), ProfileImageKey)
}

// SetProfileImage replaces the stored profile image.
func (s *RecordService) SetProfileImage(ctx context.Context, ref ImageRef) error {
	if err := s.sim.Wait(ctx, s.latency.Save); err != nil {
		return err
	}

	s.profileMu.Lock()
	defer s.profileMu.Unlock()
	return s.store.Save(context.WithoutCancel(ctx), ProfileImageKey, ref)
}

// persistProjects writes the project collection. Callers hold projectsMu.
// Once a mutation has been applied the write is not cancelled with ctx.
func (s *RecordService) persistProjects(ctx context.Context) error {
	return s.store.Save(context.WithoutCancel(ctx), ProjectsKey, s.projects)
}

func (s *RecordService) projectIndex(id string) int {
	return slices.IndexFunc(s.projects, func(p Project) bool { return p.ID == id })
}

func (s *RecordService) hasProject(id string) bool {
	return s.projectIndex(id) >= 0
}

// newID draws IDs until one is not taken.
func (s *RecordService) newID(taken func(string) bool) string {
	for {
		id := s.idgen.New()
		if !taken(id) {
			return id
		}
		s.logger.Warn("generated id already in use, drawing another", "id", id)
	}
}
