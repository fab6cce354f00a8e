package data

import (
	"context"
	"sync"
	"time"

	"github.com/hemocore/console/apiclient"
	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/interfaces"
	"github.com/hemocore/console/logging"
	"github.com/hemocore/console/metrics"
	"github.com/hemocore/console/services"
	"github.com/hemocore/console/session"
)

// Compile-time check to ensure Loader implements SnapshotLoader
var _ interfaces.SnapshotLoader = (*Loader)(nil)

// Loader reads every collection concurrently. A failing collection is
// replaced by an empty list and recorded in the report; the other
// collections are unaffected.
type Loader struct {
	svc    *services.Services
	tokens apiclient.TokenSource
}

func NewLoader(svc *services.Services) *Loader {
	return &Loader{svc: svc}
}

// WithServiceToken makes Load authenticate as the service whenever the
// context carries no caller token
func (l *Loader) WithServiceToken(ts apiclient.TokenSource) *Loader {
	l.tokens = ts
	return l
}

func (l *Loader) authenticate(ctx context.Context) context.Context {
	if _, ok := session.TokenFrom(ctx); ok || l.tokens == nil {
		return ctx
	}
	if token := l.tokens.Token(); token != "" {
		return session.WithToken(ctx, token)
	}
	return ctx
}

type branch struct {
	name string
	run  func(ctx context.Context) error
}

// fetchInto runs fetch and stores the result in dst, or an empty list on error
func fetchInto[T any](name string, fetch func(context.Context) ([]T, error), dst *[]T) branch {
	return branch{
		name: name,
		run: func(ctx context.Context) error {
			items, err := fetch(ctx)
			if err != nil {
				*dst = []T{}
				return err
			}
			*dst = items
			return nil
		},
	}
}

// Load fetches the snapshot. It never fails as a whole.
func (l *Loader) Load(ctx context.Context) (entities.Snapshot, interfaces.LoadReport) {
	ctx = l.authenticate(ctx)

	var snapshot entities.Snapshot
	report := interfaces.LoadReport{StartedAt: time.Now()}

	branches := []branch{
		fetchInto(entities.CollectionPatients, l.svc.Patients.List, &snapshot.Patients),
		fetchInto(entities.CollectionVisits, l.svc.Visits.List, &snapshot.Visits),
		fetchInto(entities.CollectionCompanies, l.svc.Companies.List, &snapshot.Companies),
		fetchInto(entities.CollectionFactors, l.svc.Factors.List, &snapshot.Factors),
		fetchInto(entities.CollectionTreatments, l.svc.Treatments.List, &snapshot.Treatments),
		fetchInto(entities.CollectionCellPhoneTreatments, l.svc.CellPhoneTreatments.List, &snapshot.CellPhoneTreatments),
		fetchInto(entities.CollectionDistributions, l.svc.Distributions.List, &snapshot.Distributions),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	failures := make(map[string]string)

	for _, b := range branches {
		wg.Add(1)
		go func(b branch) {
			defer wg.Done()
			if err := b.run(ctx); err != nil {
				mu.Lock()
				failures[b.name] = err.Error()
				mu.Unlock()

				metrics.SnapshotBranchFailures.WithLabelValues(b.name).Inc()
				logging.Warn("Collection failed to load", "collection", b.name, "error", err)
			}
		}(b)
	}
	wg.Wait()

	report.Duration = time.Since(report.StartedAt)
	if len(failures) > 0 {
		report.Failures = failures
	}
	return snapshot, report
}
