package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/normalize"
)

type VisitService struct {
	api API
}

// List returns every visit, newest visit date first
func (s *VisitService) List(ctx context.Context) ([]entities.PatientVisit, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, PathVisits, &raw); err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	records, err := decodeRecords(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode visits: %w", err)
	}

	visits := make([]entities.PatientVisit, 0, len(records))
	for _, r := range records {
		visits = append(visits, normalize.NormalizeVisit(r))
	}
	normalize.SortVisitsNewestFirst(visits)
	return visits, nil
}

// ListForPatient filters List to one patient; the API has no per-patient
// visit endpoint
func (s *VisitService) ListForPatient(ctx context.Context, patientID int) ([]entities.PatientVisit, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entities.PatientVisit, 0)
	for _, v := range all {
		if v.PatientID == patientID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *VisitService) Get(ctx context.Context, id int) (entities.PatientVisit, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, itemPath(PathVisits, id), &raw); err != nil {
		return entities.PatientVisit{}, fmt.Errorf("failed to get visit %d: %w", id, err)
	}
	return normalizedVisit(raw)
}

func (s *VisitService) Create(ctx context.Context, req entities.PatientVisitRequest) (entities.PatientVisit, error) {
	var raw json.RawMessage
	if err := s.api.Post(ctx, PathVisits, normalize.DenormalizeVisit(req), &raw); err != nil {
		return entities.PatientVisit{}, fmt.Errorf("failed to create visit: %w", err)
	}
	return normalizedVisit(raw)
}

func (s *VisitService) Update(ctx context.Context, id int, req entities.PatientVisitRequest) error {
	if err := s.api.Put(ctx, itemPath(PathVisits, id), normalize.DenormalizeVisit(req), nil); err != nil {
		return fmt.Errorf("failed to update visit %d: %w", id, err)
	}
	return nil
}

func (s *VisitService) Delete(ctx context.Context, id int) error {
	if err := s.api.Delete(ctx, itemPath(PathVisits, id), nil); err != nil {
		return fmt.Errorf("failed to delete visit %d: %w", id, err)
	}
	return nil
}

func normalizedVisit(raw json.RawMessage) (entities.PatientVisit, error) {
	record, err := decodeRecord(raw)
	if err != nil {
		return entities.PatientVisit{}, fmt.Errorf("failed to decode visit: %w", err)
	}
	if record == nil {
		return entities.PatientVisit{}, nil
	}
	return normalize.NormalizeVisit(record), nil
}
