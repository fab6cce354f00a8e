// Package services exposes one service per HemoCore resource on top of the
// API client. Patient and visit services normalize what they read and
// denormalize what they write; the other resources pass through.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hemocore/console/apiclient"
	"github.com/hemocore/console/entities"
	"github.com/hemocore/console/normalize"
	"github.com/hemocore/console/session"
)

// API is the subset of the client the services depend on
type API interface {
	Get(ctx context.Context, endpoint string, out any, opts ...apiclient.Option) error
	Post(ctx context.Context, endpoint string, body, out any, opts ...apiclient.Option) error
	Put(ctx context.Context, endpoint string, body, out any, opts ...apiclient.Option) error
	Delete(ctx context.Context, endpoint string, out any, opts ...apiclient.Option) error
}

var _ API = (*apiclient.Client)(nil)

// Upstream resource paths
const (
	PathPatients      = "/patients"
	PathVisits        = "/patientVisits"
	PathFactors       = "/Factors"
	PathCompanies     = "/Companies"
	PathTreatments    = "/Treatments"
	PathCellPhone     = "/CellphoneTreatment"
	PathDistributions = "/DrugDistributions"
)

// Options configures New
type Options struct {
	// Session receives the token on login and is cleared on logout. It may
	// be nil when callers carry their own token in the request context.
	Session *session.Holder

	AllowDeliveryReversal bool

	// Now defaults to time.Now
	Now func() time.Time
}

// Services bundles every resource service
type Services struct {
	Auth                *AuthService
	Patients            *PatientService
	Visits              *VisitService
	Factors             *Resource[entities.Factor, entities.FactorRequest]
	Companies           *Resource[entities.Company, entities.CompanyRequest]
	Treatments          *Resource[entities.Treatment, entities.TreatmentRequest]
	CellPhoneTreatments *Resource[entities.CellPhoneTreatment, entities.CellPhoneTreatmentRequest]
	Distributions       *DistributionService
}

func New(api API, opts Options) *Services {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Services{
		Auth:                &AuthService{api: api, holder: opts.Session},
		Patients:            &PatientService{api: api},
		Visits:              &VisitService{api: api},
		Factors:             NewResource[entities.Factor, entities.FactorRequest](api, PathFactors),
		Companies:           NewResource[entities.Company, entities.CompanyRequest](api, PathCompanies),
		Treatments:          NewResource[entities.Treatment, entities.TreatmentRequest](api, PathTreatments),
		CellPhoneTreatments: NewResource[entities.CellPhoneTreatment, entities.CellPhoneTreatmentRequest](api, PathCellPhone),
		Distributions: &DistributionService{
			Resource:      NewResource[entities.MedicineDistribution, entities.MedicineDistributionRequest](api, PathDistributions),
			allowReversal: opts.AllowDeliveryReversal,
			audit:         NewAuditLog(),
			now:           now,
		},
	}
}

func itemPath(base string, id int) string {
	return fmt.Sprintf("%s/%d", base, id)
}

// decodeList decodes a JSON array; any other payload is an empty list
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	out := make([]T, 0)
	if !isJSON(raw, '[') {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeRecords decodes a JSON array of objects for normalization,
// skipping elements that are not objects
func decodeRecords(raw json.RawMessage) ([]normalize.Record, error) {
	records := make([]normalize.Record, 0)
	if !isJSON(raw, '[') {
		return records, nil
	}

	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			records = append(records, normalize.Record(m))
		}
	}
	return records, nil
}

// decodeRecord returns nil when raw is not a JSON object
func decodeRecord(raw json.RawMessage) (normalize.Record, error) {
	if !isJSON(raw, '{') {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return normalize.Record(m), nil
}

func isJSON(raw json.RawMessage, open byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == open
}
