package beep

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/ports"
)

// MetadataReader extracts tags from audio files with dhowden/tag and
// takes the duration from a throwaway decode. Used by the folder scan.
type MetadataReader struct{}

// NewMetadataReader creates a metadata reader.
func NewMetadataReader() *MetadataReader {
	return &MetadataReader{}
}

// ReadMetadata returns a track populated from the file's tags. Files
// without tags still produce a track titled after the file name. The
// caller assigns the ID and DateAdded.
func (r *MetadataReader) ReadMetadata(path string) (*domain.Track, error) {
	if !IsSupported(path) {
		return nil, domain.ErrUnsupportedFormat
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, domain.ErrFileNotFound
	}

	name := filepath.Base(path)
	track := &domain.Track{
		Title:     strings.TrimSuffix(name, filepath.Ext(name)),
		SourceURL: path,
	}

	if file, err := os.Open(path); err == nil {
		if metadata, err := tag.ReadFrom(file); err == nil && metadata != nil {
			applyTags(track, metadata)
		}
		_ = file.Close()
	}

	// Tags carry no duration; a decode pass does.
	if streamer, format, err := open(path); err == nil {
		track.Duration = format.SampleRate.D(streamer.Len())
		_ = streamer.Close()
	}

	return track, nil
}

func applyTags(track *domain.Track, metadata tag.Metadata) {
	if title := strings.TrimSpace(metadata.Title()); title != "" {
		track.Title = title
	}
	if artist := strings.TrimSpace(metadata.Artist()); artist != "" {
		track.Artist = artist
	}
	if album := strings.TrimSpace(metadata.Album()); album != "" {
		track.Album = album
	}
	if genre := strings.TrimSpace(metadata.Genre()); genre != "" {
		track.Genre = genre
	}
	if year := metadata.Year(); year > 0 {
		track.Year = year
	}
	if comment := strings.TrimSpace(metadata.Comment()); comment != "" {
		track.Description = comment
	}
}

var _ ports.MetadataReader = (*MetadataReader)(nil)
