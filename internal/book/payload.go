package book

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Metadata is the structured payload embedded in a book's detail page,
// reduced to the entity kinds the pipeline consumes. The payload is a flat
// map of heterogeneous records discriminated by a type tag; parsing sorts
// them into typed buckets up front so accessors never scan untyped keys.
type Metadata struct {
	Reviews      []ReviewRecord
	Contributors []ContributorRecord
	Series       []SeriesRecord
	// Genres in site-assigned prominence order, duplicates preserved.
	Genres []string
	// EditionsID addresses the book's editions listing, when present.
	EditionsID string
}

// ReviewRecord is one review entry from the metadata payload.
type ReviewRecord struct {
	Rating     int
	ReviewerID int64
}

// ContributorRecord identifies an author or other contributor by its URL slug.
type ContributorRecord struct {
	Slug string
}

// SeriesRecord identifies a series by its URL slug.
type SeriesRecord struct {
	Slug string
}

type nextData struct {
	Props struct {
		PageProps struct {
			ApolloState json.RawMessage `json:"apolloState"`
		} `json:"pageProps"`
	} `json:"props"`
}

// payloadRecord is the union shape of one apollo state entry. Only the
// fields belonging to the record's kind are populated.
type payloadRecord struct {
	Typename string `json:"__typename"`
	Rating   int    `json:"rating"`
	Creator  struct {
		Ref string `json:"__ref"`
	} `json:"creator"`
	WebURL     string `json:"webUrl"`
	BookGenres []struct {
		Genre struct {
			WebURL string `json:"webUrl"`
		} `json:"genre"`
	} `json:"bookGenres"`
	Editions *struct {
		WebURL string `json:"webUrl"`
	} `json:"editions"`
}

const genreURLPrefix = "https://www.goodreads.com/genres/"

// ParseMetadata decodes the embedded page payload. The apollo state object
// is walked token by token because record order carries meaning (genre
// prominence) and Go maps would scramble it.
func ParseMetadata(raw string) (*Metadata, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("metadata payload is empty")
	}

	var data nextData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("decode metadata payload: %w", err)
	}
	if len(data.Props.PageProps.ApolloState) == 0 {
		return nil, errors.New("metadata payload has no state object")
	}

	dec := json.NewDecoder(bytes.NewReader(data.Props.PageProps.ApolloState))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode state object: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("state payload is not an object")
	}

	meta := &Metadata{}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("decode state key: %w", err)
		}
		var record payloadRecord
		if err := dec.Decode(&record); err != nil {
			return nil, fmt.Errorf("decode state record: %w", err)
		}
		meta.absorb(record)
	}

	return meta, nil
}

func (m *Metadata) absorb(record payloadRecord) {
	switch record.Typename {
	case "Review":
		if id, ok := parseRef(record.Creator.Ref); ok {
			m.Reviews = append(m.Reviews, ReviewRecord{Rating: record.Rating, ReviewerID: id})
		}
	case "Contributor":
		if slug := urlSlug(record.WebURL); slug != "" {
			m.Contributors = append(m.Contributors, ContributorRecord{Slug: slug})
		}
	case "Series":
		if slug := urlSlug(record.WebURL); slug != "" {
			m.Series = append(m.Series, SeriesRecord{Slug: slug})
		}
	}

	for _, bookGenre := range record.BookGenres {
		m.Genres = append(m.Genres, strings.TrimPrefix(bookGenre.Genre.WebURL, genreURLPrefix))
	}

	if record.Editions != nil && m.EditionsID == "" {
		m.EditionsID = urlSlug(record.Editions.WebURL)
	}
}

// parseRef extracts the numeric id from a reference like "User:12345".
func parseRef(ref string) (int64, bool) {
	idx := strings.LastIndex(ref, ":")
	if idx < 0 || idx == len(ref)-1 {
		return 0, false
	}
	id, err := strconv.ParseInt(ref[idx+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// urlSlug returns the trailing path segment of a URL, e.g.
// "170872-wayfarers" from "https://www.goodreads.com/series/170872-wayfarers".
func urlSlug(webURL string) string {
	webURL = strings.TrimRight(strings.TrimSpace(webURL), "/")
	if webURL == "" {
		return ""
	}
	idx := strings.LastIndex(webURL, "/")
	if idx < 0 {
		return webURL
	}
	return webURL[idx+1:]
}
