package model

// VipStatus is the promotional tier of a listing.
type VipStatus string

const (
	VipStatusNone     VipStatus = "none"
	VipStatusVip      VipStatus = "vip"
	VipStatusVipPlus  VipStatus = "vip_plus"
	VipStatusSuperVip VipStatus = "super_vip"
)

// ValidVipStatus reports whether s is a recognized tier, including none.
func ValidVipStatus(s VipStatus) bool {
	switch s {
	case VipStatusNone, VipStatusVip, VipStatusVipPlus, VipStatusSuperVip:
		return true
	}
	return false
}

// ServiceType identifies a billable promotional service.
type ServiceType string

const (
	ServiceTypeFree              ServiceType = "free"
	ServiceTypeVip               ServiceType = "vip"
	ServiceTypeVipPlus           ServiceType = "vip_plus"
	ServiceTypeSuperVip          ServiceType = "super_vip"
	ServiceTypeColorHighlighting ServiceType = "color_highlighting"
	ServiceTypeAutoRenewal       ServiceType = "auto_renewal"
)

func ValidServiceType(s ServiceType) bool {
	switch s {
	case ServiceTypeFree, ServiceTypeVip, ServiceTypeVipPlus, ServiceTypeSuperVip,
		ServiceTypeColorHighlighting, ServiceTypeAutoRenewal:
		return true
	}
	return false
}

// UserRole drives role-based pricing.
type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleDealer    UserRole = "dealer"
	RoleAutosalon UserRole = "autosalon"
)

func ValidUserRole(r UserRole) bool {
	switch r {
	case RoleUser, RoleDealer, RoleAutosalon:
		return true
	}
	return false
}

// Category selects which listing domain pricing and purchase rules apply to.
type Category string

const (
	CategoryCars  Category = "cars"
	CategoryParts Category = "parts"
)

func ValidCategory(c Category) bool {
	return c == CategoryCars || c == CategoryParts
}
