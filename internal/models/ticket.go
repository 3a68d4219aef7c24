package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Ticket is one visitor's park entry for one calendar day. Date is stored
// midnight-normalized; all date comparisons rely on that.
//
// FastTrackRides holds snapshots of the rides as they were priced at
// reservation time, in reservation order. TotalCost must always equal the
// base admission price plus the sum of the snapshot prices; the service
// recomputes it on every reservation instead of trusting submitted totals.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets" json:"-"`

	ID             string    `bun:"id,pk" json:"id"`
	OwnerID        string    `bun:"owner_id,notnull" json:"owner_id"`
	Date           time.Time `bun:"date,notnull" json:"date"`
	FastTrackRides []Ride    `bun:"fast_track_rides,type:jsonb" json:"fast_track_rides"`
	UsedRides      []string  `bun:"used_rides,type:jsonb" json:"used_rides"`
	TotalCost      float64   `bun:"total_cost,notnull" json:"total_cost"`
	Bought         bool      `bun:"bought,notnull" json:"bought"`
	EntryPass      []byte    `bun:"entry_pass,nullzero" json:"-"`
	// Version guards concurrent read-modify-write cycles; every
	// conditional update increments it.
	Version   int64     `bun:"version,notnull" json:"-"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}
