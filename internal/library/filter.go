// Package library implements the pure library query: conjunctive
// filtering over a track list followed by a stable sort. It never
// mutates the input slice.
package library

import (
	"sort"
	"strings"
	"time"

	"github.com/auralplayer/aural/internal/domain"
)

// Apply filters tracks by the given spec and returns a newly allocated,
// sorted result. Predicates are conjunctive: search, then tags, then
// genres, then year range, then rating range. String matching is
// case-insensitive throughout.
func Apply(tracks []domain.Track, spec domain.FilterSpec) []domain.Track {
	now := time.Now()

	result := make([]domain.Track, 0, len(tracks))
	for _, track := range tracks {
		if !matches(track, spec, now) {
			continue
		}
		result = append(result, track)
	}

	sortTracks(result, spec.SortKey, spec.SortOrder)
	return result
}

func matches(track domain.Track, spec domain.FilterSpec, now time.Time) bool {
	if spec.Search != "" && !matchesSearch(track, spec.Search) {
		return false
	}
	if len(spec.Tags) > 0 && !intersects(track.Tags, spec.Tags) {
		return false
	}
	if len(spec.Genres) > 0 && !containsFold(spec.Genres, track.Genre) {
		return false
	}
	year := track.EffectiveYear(now)
	if spec.YearMin != 0 && year < spec.YearMin {
		return false
	}
	if spec.YearMax != 0 && year > spec.YearMax {
		return false
	}
	if track.Rating < spec.RatingMin {
		return false
	}
	if spec.RatingMax != 0 && track.Rating > spec.RatingMax {
		return false
	}
	return true
}

// matchesSearch checks the needle against title, artist, album and
// every tag.
func matchesSearch(track domain.Track, needle string) bool {
	needle = strings.ToLower(needle)
	if strings.Contains(strings.ToLower(track.Title), needle) ||
		strings.Contains(strings.ToLower(track.Artist), needle) ||
		strings.Contains(strings.ToLower(track.Album), needle) {
		return true
	}
	for _, tag := range track.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func intersects(trackTags, wanted []string) bool {
	for _, want := range wanted {
		if containsFold(trackTags, want) {
			return true
		}
	}
	return false
}

func containsFold(haystack []string, needle string) bool {
	for _, item := range haystack {
		if strings.EqualFold(item, needle) {
			return true
		}
	}
	return false
}

func sortTracks(tracks []domain.Track, key domain.SortKey, order domain.SortOrder) {
	less := lessFunc(key)
	if order == domain.SortDescending {
		inner := less
		less = func(a, b domain.Track) bool { return inner(b, a) }
	}
	sort.SliceStable(tracks, func(i, j int) bool {
		return less(tracks[i], tracks[j])
	})
}

func lessFunc(key domain.SortKey) func(a, b domain.Track) bool {
	switch key {
	case domain.SortByArtist:
		return func(a, b domain.Track) bool {
			return strings.ToLower(a.Artist) < strings.ToLower(b.Artist)
		}
	case domain.SortByDateAdded:
		// A missing date sorts as the zero time, before everything.
		return func(a, b domain.Track) bool {
			return a.DateAdded.Before(b.DateAdded)
		}
	case domain.SortByPlayCount:
		return func(a, b domain.Track) bool {
			return a.PlayCount < b.PlayCount
		}
	case domain.SortByRating:
		return func(a, b domain.Track) bool {
			return a.Rating < b.Rating
		}
	default:
		return func(a, b domain.Track) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	}
}
