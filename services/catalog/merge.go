package catalog

import (
	"log/slog"
	"sort"
	"time"

	"github.com/antzucaro/matchr"

	"catwatch-backend/lib/textutil"
)

// MergeInput is an immutable snapshot of one run's observations against
// the previously persisted dataset. Merge never mutates Prior.
type MergeInput struct {
	Fresh []CatRecord
	Prior map[string]CatRecord
	// source ids that produced at least one observation this run. A
	// source whose scrape came back empty must not get its historical
	// records marked Adopted; that is one flaky site away from wiping
	// a whole organization from the dataset.
	ObservedSources map[string]bool
	Now             time.Time
}

// Merge reconciles fresh observations with the prior store:
//
//   - exact id matches inherit dateListed and keep reservation history
//     per the transition rules below
//   - fresh ids with no exact match are ghost-matched against unclaimed
//     prior records (same animal under a migrated id scheme)
//   - prior records that vanished from an observed source are
//     soft-deleted to Adopted, never removed
//
// Every output record passes through Enrich.
func Merge(in MergeInput) []CatRecord {
	freshIds := map[string]bool{}
	for _, cat := range in.Fresh {
		freshIds[cat.Id] = true
	}

	migrated := map[string]bool{}
	var out []CatRecord

	for _, fresh := range in.Fresh {
		prior, ok := in.Prior[fresh.Id]
		if !ok {
			if ghost, found := findGhost(fresh, in.Prior, freshIds, migrated); found {
				slog.Info("migrating identity",
					"old_id", ghost.Id, "new_id", fresh.Id, "name", fresh.Name)
				migrated[ghost.Id] = true
				prior, ok = ghost, true
			}
		}

		merged := fresh
		if ok {
			merged = mergeRecord(fresh, prior, in.Now)
		} else {
			merged.DateListed = in.Now
			merged.DateReserved = nil
			if merged.Status == StatusReserved {
				now := in.Now
				merged.DateReserved = &now
			}
		}
		out = append(out, Enrich(merged))
	}

	// vanished records: unclaimed, not migrated, and only for sources we
	// actually heard from this run
	var leftovers []CatRecord
	for id, prior := range in.Prior {
		if freshIds[id] || migrated[id] {
			continue
		}
		if in.ObservedSources[prior.SourceId] && prior.Status != StatusAdopted {
			slog.Info("marking as adopted", "id", id, "name", prior.Name)
			prior.Status = StatusAdopted
			if prior.DateAdopted == nil {
				now := in.Now
				prior.DateAdopted = &now
			}
			// dateReserved stays; reserved->adopted duration feeds the
			// front end's time-to-reserve chart
		}
		leftovers = append(leftovers, Enrich(prior))
	}
	sort.Slice(leftovers, func(i, j int) bool { return leftovers[i].Id < leftovers[j].Id })

	return append(out, leftovers...)
}

// mergeRecord refreshes a re-observed record: every field follows the new
// observation except identity and history. dateListed is inherited
// verbatim; dateAdopted is set at most once and never cleared.
func mergeRecord(fresh, prior CatRecord, now time.Time) CatRecord {
	// the fresh id wins even for ghost matches, the prior one is retired
	out := fresh

	out.DateListed = prior.DateListed
	if out.DateListed.IsZero() {
		out.DateListed = now
	}
	out.DateAdopted = prior.DateAdopted

	switch {
	case fresh.Status == StatusReserved && prior.Status != StatusReserved:
		out.DateReserved = &now
	case fresh.Status == StatusReserved:
		out.DateReserved = prior.DateReserved
	default:
		// observed un-reserved: the reservation date is cleared. rescue
		// sites rarely cancel reservations for real, but the literal
		// site state wins here (documented quirk).
		out.DateReserved = nil
	}

	return out
}

// findGhost looks for the same animal under a changed identifier scheme:
// an unclaimed prior record with the identical (case-insensitive) name
// from the identical source that the fresh set does not contain under its
// own id. When several prior records share the name, the textually
// closest one (breed, location, description) is claimed.
func findGhost(fresh CatRecord, prior map[string]CatRecord, freshIds, migrated map[string]bool) (CatRecord, bool) {
	name := textutil.NormalizeName(fresh.Name)
	if name == "" {
		return CatRecord{}, false
	}

	var best CatRecord
	bestSimilarity := -1.0
	for id, old := range prior {
		if freshIds[id] || migrated[id] {
			continue
		}
		if old.SourceId != fresh.SourceId || textutil.NormalizeName(old.Name) != name {
			continue
		}

		similarity := matchr.JaroWinkler(ghostText(old), ghostText(fresh), false)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = old
		}
	}

	return best, bestSimilarity >= 0
}

func ghostText(cat CatRecord) string {
	return cat.Breed + " " + cat.Location + " " + cat.Description
}
