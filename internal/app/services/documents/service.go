package documents

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/landscape-hq/underwriter/internal/app/domain/document"
	"github.com/landscape-hq/underwriter/internal/app/domain/lease"
	"github.com/landscape-hq/underwriter/internal/app/metrics"
	"github.com/landscape-hq/underwriter/internal/app/storage"
	"github.com/landscape-hq/underwriter/internal/logging"
)

// maxUploadBytes caps a single document upload.
const maxUploadBytes = 32 << 20

// Service manages ingested documents and their extraction lifecycle.
type Service struct {
	projects  storage.ProjectStore
	leases    storage.LeaseStore
	store     storage.DocumentStore
	blobs     BlobStore
	extractor *Extractor
	threshold float64
	log       *logging.Logger
}

// New creates a configured document service. The extractor may be nil, in
// which case pending documents stay queued until one is attached.
func New(projects storage.ProjectStore, leaseStore storage.LeaseStore, store storage.DocumentStore, blobs BlobStore, extractor *Extractor, threshold float64, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("documents")
	}
	if threshold <= 0 || threshold > 1 {
		threshold = 0.7
	}
	return &Service{
		projects:  projects,
		leases:    leaseStore,
		store:     store,
		blobs:     blobs,
		extractor: extractor,
		threshold: threshold,
		log:       log,
	}
}

// Upload registers a document and stores its bytes, queuing it for
// extraction.
func (s *Service) Upload(ctx context.Context, projectID string, kind document.Kind, fileName, contentType, uploadedBy string, data []byte) (document.Document, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return document.Document{}, fmt.Errorf("file_name is required")
	}
	if !document.ValidKind(kind) {
		return document.Document{}, fmt.Errorf("unknown document kind %q", kind)
	}
	if len(data) == 0 {
		return document.Document{}, fmt.Errorf("document body is empty")
	}
	if len(data) > maxUploadBytes {
		return document.Document{}, fmt.Errorf("document exceeds %d bytes", maxUploadBytes)
	}
	if projectID != "" {
		p, err := s.projects.GetProject(ctx, projectID)
		if err != nil {
			return document.Document{}, err
		}
		if p.Deleted() {
			return document.Document{}, fmt.Errorf("project %s is deleted", projectID)
		}
	}

	sum := sha256.Sum256(data)
	key := uuid.NewString() + "/" + fileName

	if err := s.blobs.Put(ctx, key, data); err != nil {
		return document.Document{}, err
	}

	d := document.Document{
		ProjectID:   projectID,
		FileName:    fileName,
		ContentType: strings.TrimSpace(contentType),
		ByteSize:    int64(len(data)),
		SHA256:      hex.EncodeToString(sum[:]),
		StorageKey:  key,
		Kind:        kind,
		Status:      document.StatusPending,
		UploadedBy:  strings.TrimSpace(uploadedBy),
	}
	d, err := s.store.CreateDocument(ctx, d)
	if err != nil {
		return document.Document{}, err
	}
	s.log.WithField("document_id", d.ID).
		WithField("kind", string(d.Kind)).
		WithField("bytes", d.ByteSize).
		Info("document uploaded")
	return d, nil
}

// Get fetches a document by identifier.
func (s *Service) Get(ctx context.Context, id string) (document.Document, error) {
	return s.store.GetDocument(ctx, id)
}

// List returns documents, optionally filtered by project and status.
func (s *Service) List(ctx context.Context, projectID string, status document.Status) ([]document.Document, error) {
	return s.store.ListDocuments(ctx, projectID, status)
}

// Content returns the stored bytes of a document.
func (s *Service) Content(ctx context.Context, id string) (document.Document, []byte, error) {
	d, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return document.Document{}, nil, err
	}
	data, err := s.blobs.Get(ctx, d.StorageKey)
	if err != nil {
		return document.Document{}, nil, err
	}
	return d, data, nil
}

// Reclassify changes a document's kind and requeues it for extraction.
func (s *Service) Reclassify(ctx context.Context, id string, kind document.Kind) (document.Document, error) {
	if !document.ValidKind(kind) {
		return document.Document{}, fmt.Errorf("unknown document kind %q", kind)
	}
	d, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return document.Document{}, err
	}
	if d.Status == document.StatusProcessing {
		return document.Document{}, fmt.Errorf("document %s is being processed", id)
	}
	d.Kind = kind
	d.Status = document.StatusPending
	d.Error = ""
	d, err = s.store.UpdateDocument(ctx, d)
	if err != nil {
		return document.Document{}, err
	}
	s.log.WithField("document_id", d.ID).
		WithField("kind", string(kind)).
		Info("document reclassified")
	return d, nil
}

// Delete removes a document and its stored bytes.
func (s *Service) Delete(ctx context.Context, id string) error {
	d, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, d.StorageKey); err != nil {
		s.log.WithError(err).WithField("document_id", id).Warn("blob cleanup failed")
	}
	return nil
}

// GetExtraction returns the extraction results for a document.
func (s *Service) GetExtraction(ctx context.Context, documentID string) (document.Extraction, error) {
	d, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return document.Extraction{}, err
	}
	if d.Status != document.StatusExtracted {
		return document.Extraction{}, fmt.Errorf("document %s has no extraction (status %s)", documentID, d.Status)
	}
	return s.store.GetExtraction(ctx, documentID)
}

// ProcessPending claims up to limit pending documents and runs extraction
// on each. It returns the number processed.
func (s *Service) ProcessPending(ctx context.Context, limit int) (int, error) {
	if s.extractor == nil {
		return 0, nil
	}
	if limit <= 0 {
		limit = 10
	}
	claimed, err := s.store.ClaimPendingDocuments(ctx, limit)
	if err != nil {
		return 0, err
	}

	for _, d := range claimed {
		start := time.Now()
		if err := s.processOne(ctx, d); err != nil {
			metrics.RecordExtraction(string(d.Kind), "failed", time.Since(start))
			s.log.WithError(err).
				WithField("document_id", d.ID).
				Error("document extraction failed")
			if saveErr := s.store.SaveExtraction(ctx, d.ID, nil, document.StatusFailed, err.Error()); saveErr != nil {
				s.log.WithError(saveErr).WithField("document_id", d.ID).Error("failure save failed")
			}
			continue
		}
		metrics.RecordExtraction(string(d.Kind), "extracted", time.Since(start))
	}
	return len(claimed), nil
}

func (s *Service) processOne(ctx context.Context, d document.Document) error {
	data, err := s.blobs.Get(ctx, d.StorageKey)
	if err != nil {
		return err
	}

	fields, err := s.extractor.Extract(ctx, d.Kind, string(data))
	if err != nil {
		return err
	}
	if err := s.store.SaveExtraction(ctx, d.ID, fields, document.StatusExtracted, ""); err != nil {
		return err
	}
	s.log.WithField("document_id", d.ID).
		WithField("fields", len(fields)).
		Info("document extracted")
	return nil
}

// Promote turns an extracted lease document into a draft lease on its
// project. The extraction's lowest field confidence must clear the
// configured threshold.
func (s *Service) Promote(ctx context.Context, documentID string) (lease.Lease, error) {
	d, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return lease.Lease{}, err
	}
	if d.Kind != document.KindLease {
		return lease.Lease{}, fmt.Errorf("only lease documents can be promoted")
	}
	if d.Status != document.StatusExtracted {
		return lease.Lease{}, fmt.Errorf("document %s is not extracted (status %s)", documentID, d.Status)
	}
	if d.ProjectID == "" {
		return lease.Lease{}, fmt.Errorf("document %s is not attached to a project", documentID)
	}

	ex, err := s.store.GetExtraction(ctx, documentID)
	if err != nil {
		return lease.Lease{}, err
	}
	if ex.MinConfidence < s.threshold {
		return lease.Lease{}, fmt.Errorf("extraction confidence %.2f below threshold %.2f", ex.MinConfidence, s.threshold)
	}

	l, err := leaseFromExtraction(d.ProjectID, ex)
	if err != nil {
		return lease.Lease{}, err
	}
	l, err = s.leases.CreateLease(ctx, l)
	if err != nil {
		return lease.Lease{}, err
	}
	s.log.WithField("document_id", documentID).
		WithField("lease_id", l.ID).
		WithField("project_id", l.ProjectID).
		Info("extraction promoted to draft lease")
	return l, nil
}

func leaseFromExtraction(projectID string, ex document.Extraction) (lease.Lease, error) {
	values := make(map[string]string, len(ex.Fields))
	for _, f := range ex.Fields {
		if f.TypedValue != "" {
			values[f.FieldKey] = f.TypedValue
		}
	}

	number := func(key string) float64 {
		v, _ := strconv.ParseFloat(values[key], 64)
		return v
	}
	date := func(key string) time.Time {
		t, _ := time.Parse("2006-01-02", values[key])
		return t
	}

	l := lease.Lease{
		ProjectID:      projectID,
		TenantName:     values["tenant_name"],
		Suite:          values["suite"],
		RentableSF:     number("rentable_sf"),
		Commencement:   date("commencement"),
		Expiration:     date("expiration"),
		BaseRentPSF:    number("base_rent_psf"),
		EscalationPct:  number("escalation_pct"),
		FreeRentMonths: int(number("free_rent_months")),
		RecoveryType:   lease.RecoveryType(values["recovery_type"]),
		Status:         lease.StatusDraft,
	}
	if l.RecoveryType == "" {
		l.RecoveryType = lease.RecoveryGross
	}
	if l.TenantName == "" {
		return lease.Lease{}, fmt.Errorf("extraction is missing tenant_name")
	}
	if l.RentableSF <= 0 {
		return lease.Lease{}, fmt.Errorf("extraction is missing rentable_sf")
	}
	if l.Commencement.IsZero() || l.Expiration.IsZero() || !l.Expiration.After(l.Commencement) {
		return lease.Lease{}, fmt.Errorf("extraction has an invalid lease term")
	}
	return l, nil
}
