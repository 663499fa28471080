package constants

import "fmt"

const (
	RoleAdmin      = "admin"
	RoleCounsellor = "counsellor"
	RoleTelecaller = "telecaller"
	RoleAccountant = "accountant"
	RoleRegistrar  = "registrar"
)

const (
	ErrOnlyAdminsCanAccess = "Only admin may access %s."
	ErrOnlyStaffCanAccess  = "Only %s may access %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleError(feature string, roles []string) string {
	list := ""
	for i, r := range roles {
		switch {
		case i == 0:
			list = r
		case i == len(roles)-1:
			list += " or " + r
		default:
			list += ", " + r
		}
	}
	return fmt.Sprintf(ErrOnlyStaffCanAccess, list, feature)
}

// IsValidRole reports whether r is one of the staff roles.
func IsValidRole(r string) bool {
	for _, x := range AllRoles {
		if x == r {
			return true
		}
	}
	return false
}

// ==========================
// Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleAdmin,
		RoleCounsellor,
		RoleTelecaller,
		RoleAccountant,
		RoleRegistrar,
	}

	// enquiry desk
	FrontOffice = []string{
		RoleAdmin,
		RoleCounsellor,
		RoleTelecaller,
	}

	// fee form, drafts and final records
	FeeDesk = []string{
		RoleAdmin,
		RoleCounsellor,
		RoleAccountant,
	}

	Cashiers = []string{
		RoleAdmin,
		RoleAccountant,
	}

	DocumentVerifiers = []string{
		RoleAdmin,
		RoleRegistrar,
	}

	AdminOnly = []string{
		RoleAdmin,
	}
)
