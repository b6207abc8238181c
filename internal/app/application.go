package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/landscape-hq/underwriter/internal/app/services/backendproxy"
	"github.com/landscape-hq/underwriter/internal/app/services/benchmarks"
	"github.com/landscape-hq/underwriter/internal/app/services/comps"
	costsvc "github.com/landscape-hq/underwriter/internal/app/services/costs"
	"github.com/landscape-hq/underwriter/internal/app/services/documents"
	"github.com/landscape-hq/underwriter/internal/app/services/leases"
	opexsvc "github.com/landscape-hq/underwriter/internal/app/services/opex"
	"github.com/landscape-hq/underwriter/internal/app/services/projects"
	"github.com/landscape-hq/underwriter/internal/app/services/reports"
	"github.com/landscape-hq/underwriter/internal/app/storage"
	"github.com/landscape-hq/underwriter/internal/app/storage/memory"
	"github.com/landscape-hq/underwriter/internal/app/system"
	"github.com/landscape-hq/underwriter/internal/httputil"
	"github.com/landscape-hq/underwriter/internal/logging"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Projects   storage.ProjectStore
	Leases     storage.LeaseStore
	Benchmarks storage.BenchmarkStore
	Opex       storage.OpexStore
	Comps      storage.CompStore
	Costs      storage.CostStore
	Documents  storage.DocumentStore
}

// Options carries the optional external dependencies. Zero values disable
// the corresponding integration.
type Options struct {
	// Blobs stores uploaded document content. Nil falls back to a
	// local directory under the OS temp dir.
	Blobs documents.BlobStore
	// Extractor performs LLM field extraction. Nil disables extraction
	// and the background poller.
	Extractor *documents.Extractor
	// ExtractionSchedule is the poller cron expression.
	ExtractionSchedule string
	// ExtractionBatch bounds documents claimed per poll.
	ExtractionBatch int
	// PromoteThreshold is the minimum field confidence for promoting an
	// extraction into a lease.
	PromoteThreshold float64
	// ReportCache caches report payloads. Nil disables caching.
	ReportCache reports.Cache
	// Backend relays whitelisted requests to the Django backend. Nil
	// disables the proxy.
	Backend *httputil.ServiceClient
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logging.Logger

	Projects   *projects.Service
	Leases     *leases.Service
	Benchmarks *benchmarks.Service
	Opex       *opexsvc.Service
	Comps      *comps.Service
	Costs      *costsvc.Service
	Documents  *documents.Service
	Reports    *reports.Service
	Backend    *backendproxy.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logging.Logger) (*Application, error) {
	if log == nil {
		log = logging.NewDefault("app")
	}

	mem := memory.New()
	if stores.Projects == nil {
		stores.Projects = mem
	}
	if stores.Leases == nil {
		stores.Leases = mem
	}
	if stores.Benchmarks == nil {
		stores.Benchmarks = mem
	}
	if stores.Opex == nil {
		stores.Opex = mem
	}
	if stores.Comps == nil {
		stores.Comps = mem
	}
	if stores.Costs == nil {
		stores.Costs = mem
	}
	if stores.Documents == nil {
		stores.Documents = mem
	}

	blobs := opts.Blobs
	if blobs == nil {
		dir := filepath.Join(os.TempDir(), "underwriter-blobs")
		local, err := documents.NewLocalBlobStore(dir)
		if err != nil {
			return nil, fmt.Errorf("create blob store: %w", err)
		}
		log.WithField("dir", dir).Warn("no blob store configured; using local temp directory")
		blobs = local
	}

	cache := opts.ReportCache
	if cache == nil {
		cache = reports.NopCache{}
	}

	manager := system.NewManager()

	projectService := projects.New(stores.Projects, log)
	leaseService := leases.New(stores.Projects, stores.Leases, log)
	benchmarkService := benchmarks.New(stores.Benchmarks, log)
	opexService := opexsvc.New(stores.Projects, stores.Opex, log)
	compService := comps.New(stores.Comps, log)
	costService := costsvc.New(stores.Projects, stores.Benchmarks, stores.Costs, log)
	documentService := documents.New(stores.Projects, stores.Leases, stores.Documents, blobs, opts.Extractor, opts.PromoteThreshold, log)
	reportService := reports.New(stores.Projects, stores.Leases, stores.Opex, stores.Benchmarks, stores.Costs, cache, log)
	backendService := backendproxy.New(opts.Backend, log)

	for _, name := range []string{"projects", "leases", "benchmarks"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	if opts.Extractor != nil {
		poller := documents.NewPoller(documentService, opts.ExtractionSchedule, opts.ExtractionBatch, log)
		if err := manager.Register(poller); err != nil {
			return nil, fmt.Errorf("register %s: %w", poller.Name(), err)
		}
	} else {
		log.Warn("extraction endpoint not set; document extraction poller disabled")
	}

	return &Application{
		manager:    manager,
		log:        log,
		Projects:   projectService,
		Leases:     leaseService,
		Benchmarks: benchmarkService,
		Opex:       opexService,
		Comps:      compService,
		Costs:      costService,
		Documents:  documentService,
		Reports:    reportService,
		Backend:    backendService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
