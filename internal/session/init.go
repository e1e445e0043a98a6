package session

import "time"

// beginInit walks the catalog in fixed-size batches, minting the view
// handles for each record and yielding the loop between batches so input
// stays responsive while thousands of records come up.
func (s *Session) beginInit() {
	total := s.store.Len()
	s.logger.Info().
		Int("records", total).
		Int("batchSize", s.explore.BatchSize).
		Msg("Initializing catalog")

	s.coord.ShowHomeView()

	if total == 0 {
		s.finishInit(time.Now())
		return
	}
	s.initBatch(0, time.Now())
}

func (s *Session) initBatch(start int, began time.Time) {
	records := s.store.All()
	end := start + s.explore.BatchSize
	if end > len(records) {
		end = len(records)
	}

	for _, rec := range records[start:end] {
		rec.Handles = s.factory.CreateHandles(rec)
		if rec.Visited || rec.Bookmarked {
			s.coord.SetStatus(rec)
		}
	}

	if s.events.OnInitProgress != nil {
		s.events.OnInitProgress(end, len(records))
	}

	if end < len(records) {
		s.loop.After(s.explore.BatchDelay, func() {
			s.initBatch(end, began)
		})
		return
	}
	s.finishInit(began)
}

// finishInit runs exactly once per session, after the last batch.
func (s *Session) finishInit(began time.Time) {
	s.initialized = true
	took := time.Since(began)
	s.metrics.RecordInit(s.store.Len(), took)
	s.logger.Info().Dur("took", took).Msg("Catalog initialized")

	if s.events.OnInitFinished != nil {
		s.events.OnInitFinished()
	}

	// a restored distance filter holds the announcement until the fix
	// arrives and the post-fix evaluation speaks instead
	pendingFix := s.cfg.DistanceKm != nil && s.pos == nil
	s.evaluate(pendingFix)

	if pendingFix {
		s.geolocate()
	}
}
