package domain

// User is the authenticated identity every core operation receives
// explicitly. DepartmentID is nil for users without an assignment.
type User struct {
	ID             int64
	Username       string
	PasswordHash   string
	DepartmentID   *int64
	DepartmentName string
}

func (u *User) HasDepartment() bool {
	return u != nil && u.DepartmentID != nil
}

func (u *User) IsAssemblyTeam() bool {
	return u.HasDepartment() && u.DepartmentName == AssemblyTeamName
}
