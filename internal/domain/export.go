package domain

import "time"

// PlaylistExport is a portable snapshot of one playlist together with
// the resolved track metadata. It intentionally carries no internal
// ids so it can be imported into a different library; import always
// assigns fresh ids.
type PlaylistExport struct {
	Playlist ExportedPlaylist `json:"playlist"`
	Metadata ExportMetadata   `json:"metadata"`
}

// ExportedPlaylist is the playlist portion of an export snapshot.
type ExportedPlaylist struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Tracks      []ExportedTrack `json:"tracks"`
}

// ExportedTrack is a track reduced to its portable fields.
type ExportedTrack struct {
	Title   string  `json:"title"`
	Artist  string  `json:"artist"`
	Seconds float64 `json:"duration"`
	URL     string  `json:"url"`
}

// ExportMetadata describes the export itself.
type ExportMetadata struct {
	ExportedAt    time.Time `json:"exportedAt"`
	TotalTracks   int       `json:"totalTracks"`
	TotalDuration float64   `json:"totalDuration"`
}
