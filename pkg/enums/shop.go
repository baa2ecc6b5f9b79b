package enums

import "fmt"

// ShopStatus tracks the ownership request review.
type ShopStatus string

const (
	ShopStatusPending  ShopStatus = "pending"
	ShopStatusApproved ShopStatus = "approved"
	ShopStatusRejected ShopStatus = "rejected"
)

var validShopStatuses = []ShopStatus{
	ShopStatusPending,
	ShopStatusApproved,
	ShopStatusRejected,
}

// String implements fmt.Stringer.
func (s ShopStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShopStatus.
func (s ShopStatus) IsValid() bool {
	for _, candidate := range validShopStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseShopStatus converts raw input into a ShopStatus.
func ParseShopStatus(value string) (ShopStatus, error) {
	for _, candidate := range validShopStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shop status %q", value)
}

// ShopCategory is the storefront vertical chosen during onboarding.
type ShopCategory string

const (
	ShopCategoryFoodDelivery    ShopCategory = "Food Delivery"
	ShopCategoryLibrary         ShopCategory = "Library"
	ShopCategoryStationery      ShopCategory = "Stationery"
	ShopCategoryPrinting        ShopCategory = "Printing"
	ShopCategoryConfectionary   ShopCategory = "Confectionary"
	ShopCategoryElectronics     ShopCategory = "Electronics"
	ShopCategoryClothing        ShopCategory = "Clothing"
	ShopCategoryLaundryServices ShopCategory = "Laundry Services"
	ShopCategoryPharmacy        ShopCategory = "Pharmacy"
	ShopCategoryOldBooks        ShopCategory = "Old Books"
	ShopCategoryOthers          ShopCategory = "Others"
)

var validShopCategories = []ShopCategory{
	ShopCategoryFoodDelivery,
	ShopCategoryLibrary,
	ShopCategoryStationery,
	ShopCategoryPrinting,
	ShopCategoryConfectionary,
	ShopCategoryElectronics,
	ShopCategoryClothing,
	ShopCategoryLaundryServices,
	ShopCategoryPharmacy,
	ShopCategoryOldBooks,
	ShopCategoryOthers,
}

func (c ShopCategory) String() string {
	return string(c)
}

func (c ShopCategory) IsValid() bool {
	for _, candidate := range validShopCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

func ParseShopCategory(value string) (ShopCategory, error) {
	for _, candidate := range validShopCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shop category %q", value)
}

// FoodCategory groups catalog items.
type FoodCategory string

const (
	FoodCategoryBreakfast      FoodCategory = "Breakfast"
	FoodCategoryLunch          FoodCategory = "Lunch"
	FoodCategoryAfternoonSnack FoodCategory = "Afternoon Snack"
	FoodCategoryDinner         FoodCategory = "Dinner"
	FoodCategoryBooks          FoodCategory = "Books"
	FoodCategoryComponents     FoodCategory = "Components"
	FoodCategoryOther          FoodCategory = "other"
)

var validFoodCategories = []FoodCategory{
	FoodCategoryBreakfast,
	FoodCategoryLunch,
	FoodCategoryAfternoonSnack,
	FoodCategoryDinner,
	FoodCategoryBooks,
	FoodCategoryComponents,
	FoodCategoryOther,
}

func (c FoodCategory) String() string {
	return string(c)
}

func (c FoodCategory) IsValid() bool {
	for _, candidate := range validFoodCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

func ParseFoodCategory(value string) (FoodCategory, error) {
	for _, candidate := range validFoodCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid food category %q", value)
}
