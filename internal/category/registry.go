// Package category holds the static registry of spending-category
// metadata keyed by the wire-format tags used by the catalog and
// recommendation APIs.
package category

import "cardgenius/internal/core"

// Group tags used across the registry.
const (
	GroupShopping  = "shopping"
	GroupFood      = "food"
	GroupTravel    = "travel"
	GroupUtilities = "utilities"
	GroupInsurance = "insurance"
	GroupHousehold = "household"
	GroupOther     = "other"
)

var definitions = []core.CategoryDefinition{
	{Key: "amazon_spends", DisplayName: "Amazon", Icon: "amazon", Description: "Monthly spends on Amazon", Group: GroupShopping},
	{Key: "flipkart_spends", DisplayName: "Flipkart", Icon: "flipkart", Description: "Monthly spends on Flipkart", Group: GroupShopping},
	{Key: "other_online_spends", DisplayName: "Other Online Shopping", Icon: "cart", Description: "Monthly spends on other online stores", Group: GroupShopping},
	{Key: "other_offline_spends", DisplayName: "Offline Shopping", Icon: "store", Description: "Monthly in-store spends", Group: GroupShopping},
	{Key: "grocery_spends_online", DisplayName: "Online Groceries", Icon: "grocery", Description: "Monthly online grocery orders", Group: GroupFood},
	{Key: "online_food_ordering", DisplayName: "Food Delivery", Icon: "delivery", Description: "Monthly food delivery orders", Group: GroupFood},
	{Key: "dining_or_going_out", DisplayName: "Dining Out", Icon: "dining", Description: "Monthly restaurant and going-out spends", Group: GroupFood},
	{Key: "fuel", DisplayName: "Fuel", Icon: "fuel", Description: "Monthly fuel spends", Group: GroupTravel},
	{Key: "flights_annual", DisplayName: "Flights", Icon: "flight", Description: "Yearly flight bookings", Group: GroupTravel},
	{Key: "hotels_annual", DisplayName: "Hotels", Icon: "hotel", Description: "Yearly hotel bookings", Group: GroupTravel},
	{Key: "domestic_lounge_usage_quarterly", DisplayName: "Domestic Lounge Visits", Icon: "lounge", Description: "Airport lounge visits per quarter (domestic)", Group: GroupTravel},
	{Key: "international_lounge_usage_quarterly", DisplayName: "International Lounge Visits", Icon: "lounge", Description: "Airport lounge visits per quarter (international)", Group: GroupTravel},
	{Key: "mobile_phone_bills", DisplayName: "Mobile Bills", Icon: "mobile", Description: "Monthly mobile recharges and bills", Group: GroupUtilities},
	{Key: "electricity_bills", DisplayName: "Electricity", Icon: "bolt", Description: "Monthly electricity bills", Group: GroupUtilities},
	{Key: "water_bills", DisplayName: "Water", Icon: "water", Description: "Monthly water bills", Group: GroupUtilities},
	{Key: "insurance_health_annual", DisplayName: "Health Insurance", Icon: "health", Description: "Yearly health insurance premium", Group: GroupInsurance},
	{Key: "insurance_car_or_bike_annual", DisplayName: "Vehicle Insurance", Icon: "vehicle", Description: "Yearly car or bike insurance premium", Group: GroupInsurance},
	{Key: "rent", DisplayName: "Rent", Icon: "home", Description: "Monthly house rent", Group: GroupHousehold},
	{Key: "school_fees", DisplayName: "School Fees", Icon: "school", Description: "Monthly school fees", Group: GroupHousehold},
}

var byKey = func() map[string]core.CategoryDefinition {
	m := make(map[string]core.CategoryDefinition, len(definitions))
	for _, d := range definitions {
		m[d.Key] = d
	}
	return m
}()

// Lookup resolves a category key to its display metadata. Unknown keys get
// a synthesized definition built from the raw key, so upstream APIs can
// introduce categories before the registry knows them and consumers still
// have something to render.
func Lookup(key string) core.CategoryDefinition {
	if d, ok := byKey[key]; ok {
		return d
	}
	return core.CategoryDefinition{
		Key:         key,
		DisplayName: key,
		Icon:        "generic",
		Description: "Spending category",
		Group:       GroupOther,
	}
}

// Known reports whether key is present in the registry.
func Known(key string) bool {
	_, ok := byKey[key]
	return ok
}

// All returns every registered definition in declaration order.
func All() []core.CategoryDefinition {
	out := make([]core.CategoryDefinition, len(definitions))
	copy(out, definitions)
	return out
}
