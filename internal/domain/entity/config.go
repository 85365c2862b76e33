package entity

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ConfigEntry is one key/value row of a user or tenant configuration table.
type ConfigEntry struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID // User ID or tenant ID, depending on the table.
	Key       string
	Value     *string
	UpdatedAt time.Time
}

// DefaultUserConfig is merged under stored user configuration values.
//
//nolint:gochecknoglobals
var DefaultUserConfig = map[string]string{
	"theme":                 "light",
	"content-width":         "full",
	"menu-layout":           "horizontal",
	"language":              "en",
	"notifications_enabled": "true",
	"items_per_page":        "20",
}

// DefaultTenantConfig lists every allowed tenant configuration key with its default value.
//
//nolint:gochecknoglobals
var DefaultTenantConfig = map[string]string{
	"date_format":       "DD/MM/YYYY",
	"currency_format":   "#,###",
	"timezone":          "WIB",
	"main_currency":     "IDR",
	"default_language":  "id",
	"fiscal_year_start": "2025-01",
	"available_vat":     "true",
	"vat":               "11",
}

// IsAllowedTenantConfigKey reports whether key may be stored in the tenant configuration.
func IsAllowedTenantConfigKey(key string) bool {
	_, ok := DefaultTenantConfig[key]

	return ok
}

// MergeConfig overlays stored entries on top of defaults. Entries with a nil value keep the default.
func MergeConfig(defaults map[string]string, entries []*ConfigEntry) map[string]string {
	merged := maps.Clone(defaults)
	if merged == nil {
		merged = make(map[string]string, len(entries))
	}

	for _, e := range entries {
		if e.Value == nil {
			continue
		}
		merged[e.Key] = *e.Value
	}

	return merged
}

// SortedConfigKeys returns the keys of cfg in a stable order.
func SortedConfigKeys(cfg map[string]string) []string {
	return slices.Sorted(maps.Keys(cfg))
}
