package services

import (
	"sort"

	"github.com/terraincognita07/innercalm/internal/models"
)

// Reconcile merges a locally cached history with the remote history of
// record. Local entries come first so an optimistic write wins over the
// remote copy of the same id. When the remote list is unavailable only the
// local entries are used. Output is newest first with ties ordered by id;
// entries without an id cannot be matched and are dropped. Inputs are not
// modified.
func Reconcile(local []models.MoodRecord, remote []models.MoodRecord, remoteAvailable bool) []models.MoodRecord {
	capacity := len(local)
	if remoteAvailable {
		capacity += len(remote)
	}

	merged := make([]models.MoodRecord, 0, capacity)
	seen := make(map[string]struct{}, capacity)
	appendUnique := func(records []models.MoodRecord) {
		for _, record := range records {
			if record.ID == "" {
				continue
			}
			if _, duplicate := seen[record.ID]; duplicate {
				continue
			}
			seen[record.ID] = struct{}{}
			merged = append(merged, record)
		}
	}

	appendUnique(local)
	if remoteAvailable {
		appendUnique(remote)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		}
		return merged[i].ID < merged[j].ID
	})
	return merged
}
