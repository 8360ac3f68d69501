package domain

// ExceptionPermission is what a role may do with an exception of a given severity.
type ExceptionPermission struct {
	CanResolve  bool
	CanOverride bool
	Reason      string
}

// CanResolveException applies the exception resolution matrix. Treasurers fix
// the underlying issue; overriding needs an assistant treasurer or an
// association admin.
func CanResolveException(role Role, severity ExceptionSeverity) ExceptionPermission {
	if role == RoleAssistantTreasurer || role == RoleAssociationAdmin {
		return ExceptionPermission{CanResolve: true, CanOverride: true}
	}
	if severity.IsHigh() {
		if role == RoleTreasurer {
			return ExceptionPermission{
				CanResolve: true,
				Reason:     "High-severity exceptions require assistant treasurer or association admin approval",
			}
		}
		return ExceptionPermission{Reason: "You do not have permission to resolve high-severity exceptions"}
	}
	if role == RoleTreasurer {
		return ExceptionPermission{
			CanResolve: true,
			Reason:     "You can fix the underlying issue but cannot override without assistant treasurer approval",
		}
	}
	return ExceptionPermission{Reason: "You do not have permission to resolve exceptions"}
}
