package domain

// PartInventory counts units of a part staged for one specific plane.
// The schema does not enforce uniqueness on (plane, part): several rows
// may exist for the same key. Availability checks pool all of them;
// each consumed unit decrements exactly one row.
type PartInventory struct {
	ID      int64
	PlaneID int64
	PartID  int64
	Count   int
}

// PlaneInventory counts fully assembled planes. At most one row per
// plane, created on first manufacture.
type PlaneInventory struct {
	ID      int64
	PlaneID int64
	Count   int
}

// PlaneStock is a plane inventory row joined with its plane name, as
// returned by the listing query.
type PlaneStock struct {
	PlaneID   int64
	PlaneName string
	Count     int
}
