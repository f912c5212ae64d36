package file

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/ports"
)

const settingsFile = "settings.json"

// settingsRecord is the versioned on-disk settings schema. Optional
// fields are pointers so an absent field is distinguishable from a
// zero one and can be defaulted on load.
type settingsRecord struct {
	SchemaVersion int           `json:"schemaVersion"`
	Volume        *float64      `json:"volume,omitempty"`
	PlaybackRate  *float64      `json:"playbackRate,omitempty"`
	RepeatMode    *string       `json:"repeatMode,omitempty"`
	ShuffleMode   *bool         `json:"shuffleMode,omitempty"`
	FilterOptions *filterRecord `json:"filterOptions,omitempty"`
}

type filterRecord struct {
	Search    string   `json:"search,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Genres    []string `json:"genres,omitempty"`
	YearMin   int      `json:"yearMin,omitempty"`
	YearMax   int      `json:"yearMax,omitempty"`
	RatingMin int      `json:"ratingMin,omitempty"`
	RatingMax int      `json:"ratingMax,omitempty"`
	SortKey   string   `json:"sortKey,omitempty"`
	SortOrder string   `json:"sortOrder,omitempty"`
}

// SettingsRepository persists the settings record to settings.json
// under the data directory. Loading defaults and migrates; there is no
// shape-free merging of partial state.
type SettingsRepository struct {
	path string
	mu   sync.Mutex
}

// NewSettingsRepository creates a settings repository rooted at dir.
func NewSettingsRepository(dir string) *SettingsRepository {
	return &SettingsRepository{path: filepath.Join(dir, settingsFile)}
}

// Load returns the persisted settings. A missing file yields defaults;
// absent fields in an older record get their default values; numeric
// fields are clamped and an unknown repeat mode falls back to none.
func (r *SettingsRepository) Load() (*domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings := domain.DefaultSettings()

	var record settingsRecord
	if err := readJSON(r.path, &record); err != nil {
		if os.IsNotExist(err) {
			return &settings, nil
		}
		return nil, err
	}

	if record.Volume != nil {
		settings.Volume = domain.ClampVolume(*record.Volume)
	}
	if record.PlaybackRate != nil {
		settings.Rate = domain.ClampRate(*record.PlaybackRate)
	}
	if record.RepeatMode != nil {
		if mode := domain.RepeatMode(*record.RepeatMode); mode.Valid() {
			settings.Repeat = mode
		}
	}
	if record.ShuffleMode != nil {
		settings.Shuffle = *record.ShuffleMode
	}
	if record.FilterOptions != nil {
		settings.Filter = record.FilterOptions.toDomain()
		if settings.Filter.SortKey == "" {
			settings.Filter.SortKey = domain.SortByTitle
		}
		if settings.Filter.SortOrder == "" {
			settings.Filter.SortOrder = domain.SortAscending
		}
	}
	return &settings, nil
}

// Save persists the settings record at the current schema version.
func (r *SettingsRepository) Save(settings *domain.Settings) error {
	if settings == nil {
		return domain.NewValidationError("settings", "", "settings must not be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	volume := settings.Volume
	rate := settings.Rate
	repeat := string(settings.Repeat)
	shuffle := settings.Shuffle
	filter := toFilterRecord(settings.Filter)

	record := settingsRecord{
		SchemaVersion: domain.SettingsSchemaVersion,
		Volume:        &volume,
		PlaybackRate:  &rate,
		RepeatMode:    &repeat,
		ShuffleMode:   &shuffle,
		FilterOptions: &filter,
	}
	return writeJSON(r.path, record)
}

func toFilterRecord(filter domain.FilterSpec) filterRecord {
	return filterRecord{
		Search:    filter.Search,
		Tags:      filter.Tags,
		Genres:    filter.Genres,
		YearMin:   filter.YearMin,
		YearMax:   filter.YearMax,
		RatingMin: filter.RatingMin,
		RatingMax: filter.RatingMax,
		SortKey:   string(filter.SortKey),
		SortOrder: string(filter.SortOrder),
	}
}

func (record filterRecord) toDomain() domain.FilterSpec {
	return domain.FilterSpec{
		Search:    record.Search,
		Tags:      record.Tags,
		Genres:    record.Genres,
		YearMin:   record.YearMin,
		YearMax:   record.YearMax,
		RatingMin: record.RatingMin,
		RatingMax: record.RatingMax,
		SortKey:   domain.SortKey(record.SortKey),
		SortOrder: domain.SortOrder(record.SortOrder),
	}
}

var _ ports.SettingsRepository = (*SettingsRepository)(nil)
