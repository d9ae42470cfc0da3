// Package pipeline wires one scrape run end to end: adapters in sequence,
// identity stamping, the image-resolution phase, the merge against the
// prior store and exactly one write at the end.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"catwatch-backend/lib/scrapers/rescue"
	"catwatch-backend/lib/textutil"
	"catwatch-backend/services/catalog"
	"catwatch-backend/services/catalog/store"
)

var tracer = otel.Tracer("catwatch.services.catalog.pipeline")

const defaultBreed = "Domestic Short-hair"

// Entry pairs an adapter with the organization facts that are not
// scrapeable: what kind of outfit it is and where its records point when
// a listing has no profile page of its own.
type Entry struct {
	Source      rescue.Source
	Type        catalog.SourceType
	FallbackUrl string
	// BackupKey names this entry's backup snapshot. Several entries can
	// share one source id (one branch page each); their snapshots must
	// not overwrite each other or a failed branch would replay a sibling
	// branch's cats. Defaults to the source id.
	BackupKey string
}

type Pipeline struct {
	sources []Entry
	store   *store.Store
	images  *catalog.ImageCache
}

func New(sources []Entry, st *store.Store, images *catalog.ImageCache) *Pipeline {
	for i := range sources {
		if sources[i].BackupKey == "" {
			sources[i].BackupKey = sources[i].Source.ID()
		}
	}
	return &Pipeline{sources: sources, store: st, images: images}
}

// Run executes one batch. Adapters run strictly one after another; the
// shared client's politeness limiter spaces out every request inside
// them. Per-source failures degrade to the backup dataset or to "not
// observed this run"; only a persistence failure aborts, and it aborts
// before anything was written.
func (p *Pipeline) Run(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	prior := p.store.PriorMap()
	now := time.Now().UTC()

	observed := map[string]bool{}
	failed := map[string]bool{}
	var fresh []catalog.CatRecord

	for _, entry := range p.sources {
		records := p.scrapeSource(ctx, entry)
		if len(records) == 0 {
			// zero observations and no backup: nothing distinguishes this
			// entry's cats from genuinely vanished ones
			slog.Warn("entry yielded nothing, skipping vanish detection for its source",
				"source", entry.Source.ID(), "entry", entry.BackupKey)
			failed[entry.Source.ID()] = true
			continue
		}
		observed[entry.Source.ID()] = true
		fresh = append(fresh, records...)
	}
	// vanished-detection works per source id, but entries sharing an id
	// split it across branch pages. One dark branch means partial coverage
	// of the id, so the whole source sits this run out.
	for id := range failed {
		delete(observed, id)
	}
	span.SetAttributes(
		attribute.Int("fresh_records", len(fresh)),
		attribute.Int("prior_records", len(prior)),
	)

	// image phase: runs after identity assignment so cache filenames are
	// keyed by stable id, before persistence so no pending markers ever
	// reach the dataset
	for i := range fresh {
		p.resolveImage(ctx, &fresh[i], now)
	}

	merged := catalog.Merge(catalog.MergeInput{
		Fresh:           fresh,
		Prior:           prior,
		ObservedSources: observed,
		Now:             now,
	})

	err := p.store.Save(merged)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist dataset")
		return fmt.Errorf("failed to persist dataset: %w", err)
	}
	err = p.store.SaveMeta(store.RunMeta{LastScraped: now})
	if err != nil {
		return fmt.Errorf("failed to persist run metadata: %w", err)
	}

	slog.Info("run complete", "records", len(merged), "sources_observed", len(observed))
	return nil
}

// scrapeSource contains the adapter boundary: an adapter error never
// escapes past here. Live results are snapshotted as the source's backup;
// an empty or failed scrape falls back to the previous snapshot.
func (p *Pipeline) scrapeSource(ctx context.Context, entry Entry) []catalog.CatRecord {
	ctx, span := tracer.Start(ctx, "scrapeSource")
	defer span.End()
	span.SetAttributes(
		attribute.String("source", entry.Source.ID()),
		attribute.String("entry", entry.BackupKey),
	)

	slog.Info("scraping", "source", entry.Source.ID(), "entry", entry.BackupKey)
	listings, err := entry.Source.Scrape(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scrape failed")
		slog.Error("scrape failed", "source", entry.Source.ID(), "err", err)
	}

	if len(listings) == 0 {
		backup, berr := p.store.LoadBackup(entry.BackupKey)
		if berr != nil || len(backup) == 0 {
			return nil
		}
		slog.Info("using backup dataset", "entry", entry.BackupKey, "records", len(backup))
		span.AddEvent("backup fallback")
		return backup
	}

	records := make([]catalog.CatRecord, 0, len(listings))
	for _, listing := range listings {
		records = append(records, p.record(entry, listing))
	}

	err = p.store.SaveBackup(entry.BackupKey, records)
	if err != nil {
		slog.Warn("failed to snapshot backup", "entry", entry.BackupKey, "err", err)
	}
	return records
}

// record turns a raw listing into an identified (but unmerged,
// unenriched) CatRecord, degrading absent fields to Unknown.
func (p *Pipeline) record(entry Entry, listing rescue.RawListing) catalog.CatRecord {
	status := catalog.StatusAvailable
	if listing.Reserved {
		status = catalog.StatusReserved
	}

	description := textutil.Truncate(strings.TrimSpace(listing.Description), 1000)
	preferences := catalog.ExtractPreferences(description)
	if len(preferences) == 0 && description != "" {
		preferences = []string{"See profile for details"}
	}

	link := listing.ProfileLink
	if link == "" {
		link = entry.FallbackUrl
	}

	return catalog.CatRecord{
		Id:            catalog.ResolveId(entry.Source, listing),
		Name:          orUnknown(listing.Name),
		Age:           orUnknown(listing.Age),
		Breed:         withDefault(listing.Breed, defaultBreed),
		Coloring:      "Unknown",
		Gender:        orUnknown(listing.Gender),
		Location:      orUnknown(listing.Location),
		Source:        entry.Type,
		SourceId:      entry.Source.ID(),
		Preferences:   preferences,
		Description:   description,
		Status:        status,
		OriginalImage: listing.ImageUrl,
		Link:          link,
	}
}

// resolveImage swaps the remote url for a local cache reference with a
// cache-busting suffix. Placeholder-service urls and failed downloads
// both land on the shared placeholder.
func (p *Pipeline) resolveImage(ctx context.Context, cat *catalog.CatRecord, now time.Time) {
	if rescue.IsPlaceholderImage(cat.OriginalImage) {
		cat.Image = rescue.PlaceholderImage
		cat.OriginalImage = rescue.PlaceholderImage
		return
	}

	local := p.images.FetchAndCache(ctx, cat.OriginalImage, cat.Id+"."+imageExt(cat.OriginalImage))
	if local == rescue.PlaceholderImage {
		cat.Image = local
		return
	}
	cat.Image = fmt.Sprintf("%s?v=%d", local, now.Unix())
}

func imageExt(url string) string {
	url, _, _ = strings.Cut(url, "?")
	idx := strings.LastIndex(url, ".")
	if idx < 0 || len(url)-idx > 6 {
		return "jpg"
	}
	ext := url[idx+1:]
	if strings.ContainsAny(ext, "/\\") || ext == "" {
		return "jpg"
	}
	return strings.ToLower(ext)
}

func orUnknown(s string) string {
	return withDefault(s, "Unknown")
}

func withDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
