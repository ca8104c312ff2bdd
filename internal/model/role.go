package model

// Role constants
const (
	RoleAdmin   = "ADMIN"
	RoleFinance = "FINANCE"
	RoleSales   = "SALES"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleFinance || role == RoleSales
}

// masterVariableRoles maps each editable record category to the role
// allowed to write it. ADMIN is implicitly granted every category.
var masterVariableRoles = map[string]string{
	"commercial": RoleSales,
	"pricing":    RoleFinance,
	"costs":      RoleFinance,
	"financial":  RoleFinance,
}

// EditableCategories returns the record categories the given role may
// edit. Unknown roles get nothing.
func EditableCategories(role string) []string {
	if role == RoleAdmin {
		categories := make([]string, 0, len(masterVariableRoles))
		for category := range masterVariableRoles {
			categories = append(categories, category)
		}
		return categories
	}

	var categories []string
	for category, writeRole := range masterVariableRoles {
		if writeRole == role {
			categories = append(categories, category)
		}
	}
	return categories
}
