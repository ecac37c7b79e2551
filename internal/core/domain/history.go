package domain

import "time"

// AssemblyHistory is an append-only record of a single plane assembly.
// UsedParts holds the consumed part ids in the encoded list format;
// CreatedAt is assigned by the server and never updated.
type AssemblyHistory struct {
	ID        int64
	PlaneID   int64
	PlaneName string
	UsedParts string
	CreatedAt time.Time
}
