package book

import (
	"context"
	"fmt"

	"bookscout/internal/logging"
)

// signal is the tri-state outcome of one audiobook check.
type signal int

const (
	signalUnknown signal = iota
	signalConfirmed
	signalDenied
)

// Markers that identify audiobook editions on the editions listing. A bare
// "Audible" substring false-positives on hardcoded dropdown markup, hence
// the trailing commas on the format strings.
var audiobookEditionMarkers = []string{
	"Audible Studios",
	"Audio CD,",
	"Audiobook,",
	"Audible Audio,",
	"Unabridged",
}

var audioGenres = map[string]struct{}{
	"audible":   {},
	"audiobook": {},
}

// HasAudiobook reports whether any audiobook edition exists. The checks
// run cheapest first and stop at the first non-unknown signal: a marker
// substring on the detail page, then the audio genres, then a fetch of the
// editions listing. Only the last stage can deny, so a negative answer
// always reflects the full chain.
func (e *Entity) HasAudiobook(ctx context.Context) (bool, error) {
	checks := []func(context.Context) (signal, error){
		e.checkAudiobookMarker,
		e.checkAudioGenres,
		e.checkEditions,
	}
	for _, check := range checks {
		result, err := check(ctx)
		if err != nil {
			return false, err
		}
		switch result {
		case signalConfirmed:
			return true, nil
		case signalDenied:
			return false, nil
		}
	}
	return false, nil
}

// checkAudiobookMarker looks for the shelf marker on the already-loaded
// detail page. It misses real audiobooks, but when it hits it saves the
// editions fetch, and the editions listing itself is not always complete.
func (e *Entity) checkAudiobookMarker(context.Context) (signal, error) {
	if e.doc.Contains("shelf=audiobook") {
		return signalConfirmed, nil
	}
	return signalUnknown, nil
}

func (e *Entity) checkAudioGenres(context.Context) (signal, error) {
	for _, genre := range e.meta.Genres {
		if _, ok := audioGenres[genre]; ok {
			return signalConfirmed, nil
		}
	}
	return signalUnknown, nil
}

func (e *Entity) checkEditions(ctx context.Context) (signal, error) {
	if e.meta.EditionsID == "" {
		e.logger.Warn("editions id missing from metadata payload",
			logging.String(logging.FieldBookID, e.id),
			logging.String(logging.FieldImpact, "audiobook treated as absent"))
		return signalDenied, nil
	}

	doc, err := e.src.Get(ctx, fmt.Sprintf("work/editions/%s?per_page=100", e.meta.EditionsID))
	if err != nil {
		return signalUnknown, fmt.Errorf("load editions for %s: %w", e.id, err)
	}

	for _, marker := range audiobookEditionMarkers {
		if doc.Contains(marker) {
			return signalConfirmed, nil
		}
	}
	return signalDenied, nil
}
