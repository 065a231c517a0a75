package app

import (
	"context"

	"folio/internal/folio"
)

// SearchSession filters a snapshot of the projects as the search term changes.
// Terms are debounced: results are computed once the term has been stable for
// the configured quiet period.
type SearchSession struct {
	debouncer *folio.Debouncer[string]
}

// NewSearchSession fetches the projects once and calls onResults with the
// matches for every settled term.
func (a *FolioApp) NewSearchSession(ctx context.Context, facet string, onResults func(term string, results []folio.Project)) (*SearchSession, error) {
	projects, err := a.service.FetchAllProjects(ctx)
	if err != nil {
		return nil, err
	}

	quiet := a.cfg.Search.QuietPeriod.Std()
	if quiet <= 0 {
		quiet = folio.DefaultQuietPeriod
	}

	d := folio.NewDebouncer(folio.RealClock{}, quiet, func(term string) {
		onResults(term, folio.FilterProjects(projects, facet, term))
	})
	return &SearchSession{debouncer: d}, nil
}

// Type records the current content of the search box.
func (s *SearchSession) Type(term string) { s.debouncer.Push(term) }

// Submit applies the pending term immediately.
func (s *SearchSession) Submit() { s.debouncer.Flush() }

// Close drops any pending term.
func (s *SearchSession) Close() { s.debouncer.Stop() }
