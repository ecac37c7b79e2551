package domain

// AssemblyTeamName is the reserved department allowed to build and
// recycle planes. Every other department manufactures parts.
const AssemblyTeamName = "Assembly Team"

type Department struct {
	ID   int64
	Name string
}

func (d Department) IsAssemblyTeam() bool {
	return d.Name == AssemblyTeamName
}

// Part is static reference data owned by exactly one department.
// The inventory engine never creates or modifies parts.
type Part struct {
	ID           int64
	Name         string
	DepartmentID int64
}

// Plane declares its requirement list as an encoded part-id list
// (see DecodePartIDs). A part id may repeat to express quantity.
type Plane struct {
	ID            int64
	Name          string
	RequiredParts string
}
