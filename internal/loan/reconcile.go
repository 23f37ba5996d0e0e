package loan

import (
	"sort"

	"loan-portal-service/internal/models"
)

// Reconcile merges record sets from the authoritative store and the local
// submission cache into one record per id.
//
// Merge rules:
//   - Same id in both sets: the remote record wins entirely. Local records
//     are a best-effort cache written at submission time and may be stale
//     relative to backend-side updates, so no field-level merging.
//   - Id only in local: retained as-is. It represents a submission whose
//     remote write may not be visible yet; consumers treat it as provisional.
//   - Records without an id are dropped. One malformed record must not
//     blank the whole dashboard.
//
// The result is sorted by createdAt descending with id-ascending
// tie-breaks, an ordering "recent applications" views rely on. The
// function is pure and idempotent: the same inputs, in any order, yield
// an identical output list.
func Reconcile(remote, local []models.LoanApplicationRecord) []models.LoanApplicationRecord {
	merged := make(map[string]models.LoanApplicationRecord, len(remote)+len(local))

	for _, rec := range local {
		if rec.ID == "" {
			continue
		}
		rec.Source = models.SourceLocal
		merged[rec.ID] = rec
	}
	for _, rec := range remote {
		if rec.ID == "" {
			continue
		}
		rec.Source = models.SourceRemote
		merged[rec.ID] = rec
	}

	out := make([]models.LoanApplicationRecord, 0, len(merged))
	for _, rec := range merged {
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out
}
