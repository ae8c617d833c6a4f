package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/amaumene/gostremiomux/internal/constants"
	apperrors "github.com/amaumene/gostremiomux/internal/errors"
	"github.com/amaumene/gostremiomux/internal/validation"
)

// UserConfig is the per-user configuration carried base64-encoded in the
// addon URL. The core only reads it.
type UserConfig struct {
	Adapters           []AdapterConfig `json:"adapters" validate:"required,min=1,dive"`
	Store              *StoreConfig    `json:"store,omitempty"`
	Filters            FilterRules     `json:"filters"`
	Sort               []SortCriterion `json:"sort,omitempty" validate:"dive"`
	PreferredLanguages []string        `json:"preferredLanguages,omitempty" validate:"max=20,dive,min=2,max=10"`
	PreferredCodecs    []string        `json:"preferredCodecs,omitempty" validate:"max=10,dive,oneof=hevc avc av1 vp9 xvid mpeg2"`
	Format             FormatRules     `json:"format"`
	Dedupe             DedupeRules     `json:"dedupe"`
	MaxResults         int             `json:"maxResults,omitempty" validate:"gte=0,lte=500"`
}

// AdapterConfig configures one enabled upstream source.
type AdapterConfig struct {
	ID       string            `json:"id" validate:"required,max=32"`
	Preset   string            `json:"preset" validate:"required,max=32"`
	Name     string            `json:"name,omitempty" validate:"max=50"`
	Enabled  *bool             `json:"enabled,omitempty"`
	Timeout  Duration          `json:"timeout,omitempty" validate:"gte=0"`
	Priority int               `json:"priority,omitempty" validate:"gte=0,lte=1000"`
	Options  map[string]string `json:"options,omitempty" validate:"max=20"`
}

// StoreConfig identifies the debrid account used for playback.
type StoreConfig struct {
	Provider string `json:"provider" validate:"required,oneof=alldebrid realdebrid"`
	Token    string `json:"token" validate:"required,min=8,max=256"`
}

// FilterRules are hard constraints; violating candidates are dropped.
type FilterRules struct {
	AllowedResolutions  []string `json:"allowedResolutions,omitempty"`
	ExcludedResolutions []string `json:"excludedResolutions,omitempty"`
	ExcludedQualities   []string `json:"excludedQualities,omitempty"`
	RequiredLanguages   []string `json:"requiredLanguages,omitempty"`
	ExcludedLanguages   []string `json:"excludedLanguages,omitempty"`
	ExcludedGroups      []string `json:"excludedGroups,omitempty"`
	MinSize             int64    `json:"minSize,omitempty" validate:"gte=0"`
	MaxSize             int64    `json:"maxSize,omitempty" validate:"gte=0"`
	MinSeeders          int      `json:"minSeeders,omitempty" validate:"gte=0"`
}

// SortCriterion is one weighted term of the composite sort key. Criteria
// score higher-is-better unless Ascending is set.
type SortCriterion struct {
	Key       string  `json:"key" validate:"required,oneof=resolution quality codec size seeders priority language"`
	Weight    float64 `json:"weight" validate:"gte=0,lte=100"`
	Ascending bool    `json:"ascending,omitempty"`
}

// FormatRules holds the display templates.
type FormatRules struct {
	NameTemplate        string `json:"name,omitempty" validate:"max=2000"`
	DescriptionTemplate string `json:"description,omitempty" validate:"max=2000"`
}

// DedupeRules controls duplicate collapsing.
type DedupeRules struct {
	Disabled      bool    `json:"disabled,omitempty"`
	SizeTolerance float64 `json:"sizeTolerance,omitempty" validate:"gte=0,lte=0.5"`
}

// Checks are validations that depend on other packages.
type Checks struct {
	KnownPreset   func(preset string) bool
	CheckTemplate func(text string) error
	MaxAdapters   int
}

var adapterIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// DefaultSort is applied when a user configures no criteria.
func DefaultSort() []SortCriterion {
	return []SortCriterion{
		{Key: "resolution", Weight: 8},
		{Key: "quality", Weight: 4},
		{Key: "language", Weight: 3},
		{Key: "seeders", Weight: 2},
		{Key: "size", Weight: 1},
	}
}

// IsEnabled reports whether the adapter takes part in aggregation.
func (a AdapterConfig) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// DisplayName returns Name, falling back to ID.
func (a AdapterConfig) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}

// Option returns an option value or def when unset.
func (a AdapterConfig) Option(key, def string) string {
	if v, ok := a.Options[key]; ok && v != "" {
		return v
	}
	return def
}

// EnabledAdapters returns the enabled adapters in configuration order.
func (u *UserConfig) EnabledAdapters() []AdapterConfig {
	out := make([]AdapterConfig, 0, len(u.Adapters))
	for _, a := range u.Adapters {
		if a.IsEnabled() {
			out = append(out, a)
		}
	}
	return out
}

// Adapter looks up an adapter by id.
func (u *UserConfig) Adapter(id string) (AdapterConfig, bool) {
	for _, a := range u.Adapters {
		if a.ID == id {
			return a, true
		}
	}
	return AdapterConfig{}, false
}

// SortCriteria returns the configured criteria or the defaults.
func (u *UserConfig) SortCriteria() []SortCriterion {
	if len(u.Sort) == 0 {
		return DefaultSort()
	}
	return u.Sort
}

// ApplyDefaults fills derived values: adapter priorities follow list order
// when unset and timeouts fall back to defaultTimeout.
func (u *UserConfig) ApplyDefaults(defaultTimeout time.Duration) {
	n := len(u.Adapters)
	for i := range u.Adapters {
		a := &u.Adapters[i]
		if a.Priority == 0 {
			a.Priority = n - i
		}
		if a.Timeout == 0 {
			a.Timeout = Duration(defaultTimeout)
		}
		a.Preset = strings.ToLower(a.Preset)
	}
	if u.MaxResults == 0 {
		u.MaxResults = constants.DefaultMaxResults
	}
	if u.Dedupe.SizeTolerance == 0 {
		u.Dedupe.SizeTolerance = constants.DefaultSizeTolerance
	}
}

// Validate checks field constraints and cross-field rules. Failures are
// CONFIGURATION_INVALID errors.
func (u *UserConfig) Validate(checks Checks) error {
	if err := validation.New().Validate(u); err != nil {
		return err
	}

	maxAdapters := checks.MaxAdapters
	if maxAdapters == 0 {
		maxAdapters = constants.MaxAdapters
	}
	if len(u.Adapters) > maxAdapters {
		return apperrors.NewConfigurationError(fmt.Sprintf("too many adapters: %d (max %d)", len(u.Adapters), maxAdapters), nil)
	}

	seen := make(map[string]bool, len(u.Adapters))
	enabled := 0
	for i, a := range u.Adapters {
		if !adapterIDPattern.MatchString(a.ID) {
			return apperrors.NewConfigurationError(fmt.Sprintf("adapters[%d].id contains invalid characters", i), nil)
		}
		if seen[a.ID] {
			return apperrors.NewConfigurationError(fmt.Sprintf("adapters[%d].id %q is duplicated", i, a.ID), nil)
		}
		seen[a.ID] = true

		if checks.KnownPreset != nil && !checks.KnownPreset(a.Preset) {
			return apperrors.NewConfigurationError(fmt.Sprintf("adapters[%d].preset %q is unknown or disabled", i, a.Preset), nil)
		}
		if a.Timeout.Std() > constants.MaxAdapterTimeout {
			return apperrors.NewConfigurationError(fmt.Sprintf("adapters[%d].timeout must not exceed %s", i, constants.MaxAdapterTimeout), nil)
		}
		if a.IsEnabled() {
			enabled++
		}
	}
	if enabled == 0 {
		return apperrors.NewConfigurationError("no adapter is enabled", nil)
	}

	if u.Filters.MaxSize > 0 && u.Filters.MinSize > u.Filters.MaxSize {
		return apperrors.NewConfigurationError("filters.minSize must not exceed filters.maxSize", nil)
	}

	if checks.CheckTemplate != nil {
		templates := []struct{ name, text string }{
			{"format.name", u.Format.NameTemplate},
			{"format.description", u.Format.DescriptionTemplate},
		}
		for _, tpl := range templates {
			if tpl.text == "" {
				continue
			}
			if err := checks.CheckTemplate(tpl.text); err != nil {
				return apperrors.NewConfigurationError(tpl.name+" is not a valid template", err)
			}
		}
	}

	return nil
}

// DecodeUserConfig decodes the base64 JSON path segment. Both the standard
// and URL-safe alphabets are accepted, padded or not.
func DecodeUserConfig(encoded string) (*UserConfig, error) {
	if encoded == "" {
		return nil, apperrors.NewConfigurationError("configuration is missing", nil)
	}

	data, err := decodeBase64(encoded)
	if err != nil {
		return nil, apperrors.NewConfigurationError("configuration is not valid base64", err)
	}

	var u UserConfig
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, apperrors.NewConfigurationError("configuration is not valid JSON", err)
	}
	return &u, nil
}

// EncodeUserConfig is the inverse of DecodeUserConfig.
func EncodeUserConfig(u *UserConfig) (string, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

func decodeBase64(s string) ([]byte, error) {
	trimmed := strings.TrimRight(s, "=")
	if strings.ContainsAny(trimmed, "-_") {
		return base64.RawURLEncoding.DecodeString(trimmed)
	}
	return base64.RawStdEncoding.DecodeString(trimmed)
}
