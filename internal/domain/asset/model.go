package asset

import (
	"encoding/json"
	"time"
)

// Asset types stored for branding.
const (
	TypeLogo  = "logo"
	TypeBroll = "broll"
)

// BrandingAsset is a pointer into the opaque blob store. The engine never
// touches file contents; it only mints signed URLs for dispatch payloads.
type BrandingAsset struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Type        string          `json:"type"`
	StoragePath string          `json:"storage_path"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// IsBroll tolerates the legacy "b-roll" spelling still present in older rows.
func (a *BrandingAsset) IsBroll() bool {
	return a.Type == TypeBroll || a.Type == "b-roll"
}

// Palette returns the brand color palette stored in the asset's metadata,
// or nil when the metadata is absent or malformed.
func (a *BrandingAsset) Palette() []string {
	if len(a.Metadata) == 0 {
		return nil
	}
	var meta struct {
		Palette []string `json:"palette"`
	}
	if err := json.Unmarshal(a.Metadata, &meta); err != nil {
		return nil
	}
	return meta.Palette
}
