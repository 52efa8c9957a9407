package book_test

import (
	"context"
	"reflect"
	"testing"

	"bookscout/internal/book"
	"bookscout/internal/testsupport"
)

const detailPayload = `{"props":{"pageProps":{"apolloState":{
 "Review:1":{"__typename":"Review","rating":5,"creator":{"__ref":"User:101"}},
 "Review:2":{"__typename":"Review","rating":3,"creator":{"__ref":"User:102"}},
 "Review:3":{"__typename":"Review","rating":4,"creator":{"__ref":"User:103"}},
 "Contributor:10":{"__typename":"Contributor","webUrl":"https://www.goodreads.com/author/show/17650479.Becky_Chambers"},
 "Series:20":{"__typename":"Series","webUrl":"https://www.goodreads.com/series/170872-wayfarers"},
 "Book:b1":{"__typename":"Book","bookGenres":[
   {"genre":{"webUrl":"https://www.goodreads.com/genres/science-fiction"}},
   {"genre":{"webUrl":"https://www.goodreads.com/genres/space-opera"}}],
  "editions":{"webUrl":"https://www.goodreads.com/work/editions/55555-wayfarer"}}
}}}}`

const minimalPayload = `{"props":{"pageProps":{"apolloState":{
 "Book:b1":{"__typename":"Book"}
}}}}`

func newEntity(t *testing.T, src *testsupport.FakeSource, bookID string) *book.Entity {
	t.Helper()
	entity, err := book.New(context.Background(), bookID, src, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return entity
}

func TestNewFailsWithoutPayload(t *testing.T) {
	src := testsupport.NewFakeSource().
		Add("book/show/1-broken", `<html><body>no payload here</body></html>`)

	if _, err := book.New(context.Background(), "1-broken", src, nil); err == nil {
		t.Fatal("expected construction to fail without metadata payload")
	}
}

func TestNewFailsWhenFetchFails(t *testing.T) {
	src := testsupport.NewFakeSource()
	if _, err := book.New(context.Background(), "2-missing", src, nil); err == nil {
		t.Fatal("expected construction to fail when page is unavailable")
	}
}

func TestReviewersWhoLiked(t *testing.T) {
	src := testsupport.NewFakeSource().
		Add("book/show/1-dune", testsupport.BookPage(t, detailPayload, ""))
	entity := newEntity(t, src, "1-dune")

	got := entity.ReviewersWhoLiked(book.DefaultLikeScore)
	if !reflect.DeepEqual(got, []int64{101, 103}) {
		t.Fatalf("reviewers = %v", got)
	}

	all := entity.ReviewersWhoLiked(1)
	if !reflect.DeepEqual(all, []int64{101, 102, 103}) {
		t.Fatalf("reviewers at min 1 = %v", all)
	}
}

func TestGenresOrderPreserved(t *testing.T) {
	src := testsupport.NewFakeSource().
		Add("book/show/1-dune", testsupport.BookPage(t, detailPayload, ""))
	entity := newEntity(t, src, "1-dune")

	want := []string{"science-fiction", "space-opera"}
	if got := entity.Genres(); !reflect.DeepEqual(got, want) {
		t.Fatalf("genres = %v", got)
	}
}

func TestAuthorSeriesYearSentinels(t *testing.T) {
	src := testsupport.NewFakeSource().
		Add("book/show/1-bare", testsupport.BookPage(t, minimalPayload, ""))
	entity := newEntity(t, src, "1-bare")

	if got := entity.Author(); got != "" {
		t.Errorf("Author sentinel = %q", got)
	}
	if got := entity.Series(); got != "" {
		t.Errorf("Series sentinel = %q", got)
	}
	if got := entity.Year(); got != 0 {
		t.Errorf("Year sentinel = %d", got)
	}
}

func TestAuthorSeriesYearValues(t *testing.T) {
	markup := `<p data-testid="publicationInfo">First published June 1, 2002</p>`
	src := testsupport.NewFakeSource().
		Add("book/show/1-dune", testsupport.BookPage(t, detailPayload, markup))
	entity := newEntity(t, src, "1-dune")

	if got := entity.Author(); got != "17650479.Becky_Chambers" {
		t.Errorf("Author = %q", got)
	}
	if got := entity.Series(); got != "170872-wayfarers" {
		t.Errorf("Series = %q", got)
	}
	if got := entity.Year(); got != 2002 {
		t.Errorf("Year = %d", got)
	}
}

func TestRating(t *testing.T) {
	markup := `<div class="RatingStatistics__rating">4.28</div>`
	src := testsupport.NewFakeSource().
		Add("book/show/1-dune", testsupport.BookPage(t, detailPayload, markup)).
		Add("book/show/2-unrated", testsupport.BookPage(t, minimalPayload, ""))

	if got := newEntity(t, src, "1-dune").Rating(); got != 4.28 {
		t.Errorf("Rating = %v", got)
	}
	if got := newEntity(t, src, "2-unrated").Rating(); got != 0 {
		t.Errorf("Rating for unratable book = %v, want 0", got)
	}
}

func TestNumRatings(t *testing.T) {
	markup := `<span data-testid="ratingsCount">12,345 ratings</span>`
	src := testsupport.NewFakeSource().
		Add("book/show/1-dune", testsupport.BookPage(t, detailPayload, markup)).
		Add("book/show/2-bare", testsupport.BookPage(t, minimalPayload, ""))

	if got := newEntity(t, src, "1-dune").NumRatings(); got != 12345 {
		t.Errorf("NumRatings = %d", got)
	}
	if got := newEntity(t, src, "2-bare").NumRatings(); got != 0 {
		t.Errorf("NumRatings for bare page = %d, want 0", got)
	}
}

func TestTopShelvesWithCount(t *testing.T) {
	markup := `<a href="https://www.goodreads.com/work/shelves/99-dune">shelves</a>`
	shelvesPage := `<html><body>
	 <div class="shelfStat"><a href="/shelf/to-read">to-read</a><div>5039 people</div></div>
	 <div class="shelfStat"><a href="/shelf/fantasy">fantasy</a><div>812 people</div></div>
	 <div class="shelfStat"><a href="/shelf/broken">broken</a><div>no count</div></div>
	</body></html>`
	src := testsupport.NewFakeSource().
		Add("book/show/1-dune", testsupport.BookPage(t, detailPayload, markup)).
		Add("work/shelves/99-dune", shelvesPage)
	entity := newEntity(t, src, "1-dune")

	shelves, err := entity.TopShelvesWithCount(context.Background())
	if err != nil {
		t.Fatalf("TopShelvesWithCount failed: %v", err)
	}
	want := []book.Shelf{{Name: "to-read", Count: 5039}, {Name: "fantasy", Count: 812}}
	if !reflect.DeepEqual(shelves, want) {
		t.Fatalf("shelves = %+v", shelves)
	}
}

func TestTopShelvesMissingLinkIsBenign(t *testing.T) {
	src := testsupport.NewFakeSource().
		Add("book/show/1-dune", testsupport.BookPage(t, detailPayload, ""))
	entity := newEntity(t, src, "1-dune")

	shelves, err := entity.TopShelvesWithCount(context.Background())
	if err != nil {
		t.Fatalf("TopShelvesWithCount failed: %v", err)
	}
	if len(shelves) != 0 {
		t.Fatalf("expected no shelves, got %+v", shelves)
	}
	// no shelves fetch should have happened
	for _, path := range src.Requests {
		if path != "book/show/1-dune" {
			t.Fatalf("unexpected fetch of %q", path)
		}
	}
}

func TestSeriesBookIDs(t *testing.T) {
	seriesPage := `<html><body>
	 <div class="listWithDividers__item"><h3>Book 1</h3><a href="/book/show/11-first">x</a></div>
	 <div class="listWithDividers__item"><h3>Book 1.5</h3><a href="/book/show/12-interlude">x</a></div>
	 <div class="listWithDividers__item"><h3>Book 1-3</h3><a href="/book/show/13-omnibus">x</a></div>
	 <div class="listWithDividers__item"><h3>Book 4 Part 4 of 4</h3><a href="/book/show/14-part">x</a></div>
	 <div class="listWithDividers__item"><h3>Book 2</h3><a href="/book/show/11-first">x</a></div>
	</body></html>`
	src := testsupport.NewFakeSource().
		Add("book/show/1-dune", testsupport.BookPage(t, detailPayload, "")).
		Add("series/170872-wayfarers", seriesPage)
	entity := newEntity(t, src, "1-dune")

	ids, err := entity.SeriesBookIDs(context.Background())
	if err != nil {
		t.Fatalf("SeriesBookIDs failed: %v", err)
	}
	want := []string{"11-first", "12-interlude"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("series ids = %v, want %v", ids, want)
	}
}

func TestSeriesBookIDsWithoutSeries(t *testing.T) {
	src := testsupport.NewFakeSource().
		Add("book/show/1-bare", testsupport.BookPage(t, minimalPayload, ""))
	entity := newEntity(t, src, "1-bare")

	ids, err := entity.SeriesBookIDs(context.Background())
	if err != nil {
		t.Fatalf("SeriesBookIDs failed: %v", err)
	}
	if ids != nil {
		t.Fatalf("expected nil ids, got %v", ids)
	}
}

func TestGenresAndShelves(t *testing.T) {
	markup := `<a href="https://www.goodreads.com/work/shelves/99-dune">shelves</a>`
	shelvesPage := `<html><body>
	 <div class="shelfStat"><a href="/shelf/to-read">to-read</a><div>5039 people</div></div>
	</body></html>`
	src := testsupport.NewFakeSource().
		Add("book/show/1-dune", testsupport.BookPage(t, detailPayload, markup)).
		Add("work/shelves/99-dune", shelvesPage)
	entity := newEntity(t, src, "1-dune")

	tags, err := entity.GenresAndShelves(context.Background())
	if err != nil {
		t.Fatalf("GenresAndShelves failed: %v", err)
	}
	want := []string{"to-read", "science-fiction", "space-opera"}
	if !reflect.DeepEqual(tags, want) {
		t.Fatalf("tags = %v, want %v", tags, want)
	}
}
