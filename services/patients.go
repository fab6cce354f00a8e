package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/normalize"
)

// PatientService translates between the PascalCase patient records of the
// API and the normalized entities.Patient
type PatientService struct {
	api API
}

// List returns every patient, normalized
func (s *PatientService) List(ctx context.Context) ([]entities.Patient, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, PathPatients, &raw); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	records, err := decodeRecords(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode patients: %w", err)
	}

	patients := make([]entities.Patient, 0, len(records))
	for _, r := range records {
		patients = append(patients, normalize.NormalizePatient(r))
	}
	return patients, nil
}

// Get returns the patient with id, normalized
func (s *PatientService) Get(ctx context.Context, id int) (entities.Patient, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, itemPath(PathPatients, id), &raw); err != nil {
		return entities.Patient{}, fmt.Errorf("failed to get patient %d: %w", id, err)
	}
	return normalizedPatient(raw)
}

// Create sends the PascalCase wire shape of req and normalizes the echo
func (s *PatientService) Create(ctx context.Context, req entities.PatientRequest) (entities.Patient, error) {
	var raw json.RawMessage
	if err := s.api.Post(ctx, PathPatients, normalize.DenormalizePatient(req), &raw); err != nil {
		return entities.Patient{}, fmt.Errorf("failed to create patient: %w", err)
	}
	return normalizedPatient(raw)
}

// Update sends the PascalCase wire shape of req for patient id
func (s *PatientService) Update(ctx context.Context, id int, req entities.PatientRequest) error {
	if err := s.api.Put(ctx, itemPath(PathPatients, id), normalize.DenormalizePatient(req), nil); err != nil {
		return fmt.Errorf("failed to update patient %d: %w", id, err)
	}
	return nil
}

// Delete removes the patient with id
func (s *PatientService) Delete(ctx context.Context, id int) error {
	if err := s.api.Delete(ctx, itemPath(PathPatients, id), nil); err != nil {
		return fmt.Errorf("failed to delete patient %d: %w", id, err)
	}
	return nil
}

func normalizedPatient(raw json.RawMessage) (entities.Patient, error) {
	record, err := decodeRecord(raw)
	if err != nil {
		return entities.Patient{}, fmt.Errorf("failed to decode patient: %w", err)
	}
	if record == nil {
		return entities.Patient{}, nil
	}
	return normalize.NormalizePatient(record), nil
}
