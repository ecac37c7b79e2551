package service

import "github.com/dk2904/aircraft-factory/internal/core/domain"

type Action int

const (
	ActionManufacturePart Action = iota
	ActionRecyclePart
	ActionManufacturePlane
	ActionRecyclePlane
	ActionViewPlaneInventory
	ActionViewAssemblyHistory
	ActionViewPartSummary
	ActionViewDepartments
)

// Authorize decides whether user may perform action. For part actions
// ownerDepartmentID is the department owning the part; other actions
// ignore it. Pure decision function, no I/O.
func Authorize(user *domain.User, action Action, ownerDepartmentID int64) error {
	switch action {
	case ActionManufacturePart:
		if !user.HasDepartment() || *user.DepartmentID != ownerDepartmentID {
			return newError(ErrForbidden, "User does not have access to this part.")
		}
	case ActionRecyclePart:
		if !user.HasDepartment() || *user.DepartmentID != ownerDepartmentID {
			return newError(ErrForbidden, "User does not have permission to recycle this part.")
		}
	case ActionManufacturePlane, ActionRecyclePlane, ActionViewPlaneInventory, ActionViewAssemblyHistory:
		if !user.IsAssemblyTeam() {
			return newError(ErrForbidden, "User is not part of the Assembly Team.")
		}
	case ActionViewPartSummary:
		if !user.HasDepartment() || user.IsAssemblyTeam() {
			return newError(ErrForbidden, "User is either in the Assembly Team or has no valid department.")
		}
	case ActionViewDepartments:
		if !user.HasDepartment() {
			return newError(ErrForbidden, "User has no valid department.")
		}
	}
	return nil
}
