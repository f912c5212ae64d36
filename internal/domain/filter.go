package domain

import "time"

// SortKey selects the field the library is ordered by.
type SortKey string

const (
	SortByTitle     SortKey = "title"
	SortByArtist    SortKey = "artist"
	SortByDateAdded SortKey = "dateAdded"
	SortByPlayCount SortKey = "playCount"
	SortByRating    SortKey = "rating"
)

// SortOrder is the sort direction.
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// FilterSpec describes a library query: conjunctive filter predicates
// followed by a stable sort. The zero value of each predicate field
// leaves that predicate unrestricted. FilterSpec is a pure input to
// the filter; it is persisted only as a user preference, never as part
// of playback state.
type FilterSpec struct {
	// Search is a case-insensitive substring matched against title,
	// artist, album and tags.
	Search string

	// Tags passes tracks whose tag set intersects this set.
	Tags []string

	// Genres passes tracks whose genre is a member of this set.
	Genres []string

	// YearMin and YearMax bound the release year inclusively. Zero
	// means unbounded on that side. Tracks without a year are treated
	// as released in the current year.
	YearMin int
	YearMax int

	// RatingMin and RatingMax bound the rating inclusively. A zero
	// RatingMax means unbounded.
	RatingMin int
	RatingMax int

	// SortKey and SortOrder control the final stable ordering.
	SortKey   SortKey
	SortOrder SortOrder
}

// Empty reports whether the filter restricts nothing and keeps the
// default ordering.
func (f FilterSpec) Empty() bool {
	return f.Search == "" &&
		len(f.Tags) == 0 &&
		len(f.Genres) == 0 &&
		f.YearMin == 0 && f.YearMax == 0 &&
		f.RatingMin == 0 && f.RatingMax == 0
}

// EffectiveYear returns the year used for range filtering: the track's
// own year, or the current year when the track has none (which passes
// any unrestricted range).
func (t Track) EffectiveYear(now time.Time) int {
	if t.Year != 0 {
		return t.Year
	}
	return now.Year()
}
