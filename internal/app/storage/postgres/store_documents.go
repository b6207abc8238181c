package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/landscape-hq/underwriter/internal/app/domain/document"
)

const documentColumns = `id, project_id, file_name, content_type, byte_size, sha256, storage_key,
	kind, status, error, uploaded_by, created_at, updated_at`

func scanDocument(row interface{ Scan(...interface{}) error }) (document.Document, error) {
	var (
		d          document.Document
		projectID  sql.NullString
		docErr     sql.NullString
		uploadedBy sql.NullString
	)
	if err := row.Scan(&d.ID, &projectID, &d.FileName, &d.ContentType, &d.ByteSize,
		&d.SHA256, &d.StorageKey, &d.Kind, &d.Status, &docErr, &uploadedBy,
		&d.CreatedAt, &d.UpdatedAt); err != nil {
		return document.Document{}, err
	}
	d.ProjectID = projectID.String
	d.Error = docErr.String
	d.UploadedBy = uploadedBy.String
	return d, nil
}

func (s *Store) CreateDocument(ctx context.Context, d document.Document) (document.Document, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = document.StatusPending
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	var projectID interface{}
	if d.ProjectID != "" {
		projectID = d.ProjectID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO landscape.documents
			(id, project_id, file_name, content_type, byte_size, sha256, storage_key,
			 kind, status, uploaded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, d.ID, projectID, d.FileName, d.ContentType, d.ByteSize, d.SHA256,
		d.StorageKey, d.Kind, d.Status, d.UploadedBy, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return document.Document{}, err
	}
	return d, nil
}

func (s *Store) UpdateDocument(ctx context.Context, d document.Document) (document.Document, error) {
	d.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE landscape.documents
		SET kind = $2, status = $3, error = $4, updated_at = $5
		WHERE id = $1
	`, d.ID, d.Kind, d.Status, d.Error, d.UpdatedAt)
	if err != nil {
		return document.Document{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return document.Document{}, sql.ErrNoRows
	}
	return s.GetDocument(ctx, d.ID)
}

func (s *Store) GetDocument(ctx context.Context, id string) (document.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+`
		FROM landscape.documents
		WHERE id = $1
	`, id)
	return scanDocument(row)
}

func (s *Store) ListDocuments(ctx context.Context, projectID string, status document.Status) ([]document.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM landscape.documents
		WHERE ($1 = '' OR project_id = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at
	`, projectID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []document.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM landscape.document_extractions WHERE document_id = $1
		`, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `
			DELETE FROM landscape.documents WHERE id = $1
		`, id)
		if err != nil {
			return err
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}

func (s *Store) ClaimPendingDocuments(ctx context.Context, limit int) ([]document.Document, error) {
	if limit <= 0 {
		limit = 10
	}

	// FOR UPDATE SKIP LOCKED keeps concurrent poller runs from claiming the
	// same documents.
	rows, err := s.db.QueryContext(ctx, `
		UPDATE landscape.documents
		SET status = $1, updated_at = $2
		WHERE id IN (
			SELECT id FROM landscape.documents
			WHERE status = $3
			ORDER BY created_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+documentColumns+`
	`, document.StatusProcessing, time.Now().UTC(), document.StatusPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []document.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (s *Store) SaveExtraction(ctx context.Context, documentID string, fields []document.ExtractedField, status document.Status, extractErr string) error {
	now := time.Now().UTC()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM landscape.document_extractions WHERE document_id = $1
		`, documentID); err != nil {
			return err
		}

		for i := range fields {
			if fields[i].ID == "" {
				fields[i].ID = uuid.NewString()
			}
			warningsJSON, err := json.Marshal(fields[i].Warnings)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO landscape.document_extractions
					(id, document_id, field_key, raw_value, typed_value, confidence, warnings, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, fields[i].ID, documentID, fields[i].FieldKey, fields[i].RawValue,
				fields[i].TypedValue, fields[i].Confidence, warningsJSON, now); err != nil {
				return err
			}
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE landscape.documents
			SET status = $2, error = $3, updated_at = $4
			WHERE id = $1
		`, documentID, status, extractErr, now)
		if err != nil {
			return err
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}

func (s *Store) GetExtraction(ctx context.Context, documentID string) (document.Extraction, error) {
	if _, err := s.GetDocument(ctx, documentID); err != nil {
		return document.Extraction{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, field_key, raw_value, typed_value, confidence, warnings, created_at
		FROM landscape.document_extractions
		WHERE document_id = $1
		ORDER BY field_key
	`, documentID)
	if err != nil {
		return document.Extraction{}, err
	}
	defer rows.Close()

	ext := document.Extraction{DocumentID: documentID}
	for rows.Next() {
		var (
			f           document.ExtractedField
			warningsRaw []byte
		)
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.FieldKey, &f.RawValue,
			&f.TypedValue, &f.Confidence, &warningsRaw, &f.CreatedAt); err != nil {
			return document.Extraction{}, err
		}
		if len(warningsRaw) > 0 {
			_ = json.Unmarshal(warningsRaw, &f.Warnings)
		}
		if len(ext.Fields) == 0 || f.Confidence < ext.MinConfidence {
			ext.MinConfidence = f.Confidence
		}
		ext.WarningCount += len(f.Warnings)
		ext.Fields = append(ext.Fields, f)
	}
	return ext, rows.Err()
}
