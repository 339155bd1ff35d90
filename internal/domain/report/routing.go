package report

// Department names assigned by RouteDepartment.
const (
	DepartmentPublicWorks       = "Public Works"
	DepartmentTransportation    = "Transportation"
	DepartmentCommunityServices = "Community Services"
	DepartmentUtilities         = "Utilities"
	DepartmentGeneralServices   = "General Services"
)

// RouteDepartment maps a category to the municipal department responsible for it.
// Unknown categories fall through to General Services.
func RouteDepartment(category Category) string {
	switch category {
	case CategoryPothole, CategoryTrash:
		return DepartmentPublicWorks
	case CategoryStreetlight:
		return DepartmentTransportation
	case CategoryGraffiti:
		return DepartmentCommunityServices
	case CategoryWater:
		return DepartmentUtilities
	default:
		return DepartmentGeneralServices
	}
}
