package models

import (
	"github.com/uptrace/bun"
)

// Ride is a catalog record. The ticket engine treats rides as read-only;
// the catalog owns them.
type Ride struct {
	bun.BaseModel `bun:"table:rides" json:"-"`

	ID             string  `bun:"id,pk" json:"id"`
	Name           string  `bun:"name,notnull" json:"name"`
	Description    string  `bun:"description,nullzero" json:"description,omitempty"`
	MinHeightCM    int     `bun:"min_height_cm,nullzero" json:"min_height_cm,omitempty"`
	ThrillLevel    int     `bun:"thrill_level,nullzero" json:"thrill_level,omitempty"`
	FastTrackPrice float64 `bun:"fast_track_price,notnull" json:"fast_track_price"`
}
