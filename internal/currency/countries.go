package currency

import "slices"

var countries = []string{
	"Argentina", "Australia", "Austria", "Bahamas", "Bahrain", "Bangladesh", "Barbados", "Belarus", "Belgium", "Benin",
	"Bhutan", "Bolivia", "Cambodia", "Cameroon", "Canada", "Central African Republic", "Chile", "China", "Colombia",
	"Congo, Democratic Republic of the", "Costa Rica", "Croatia", "Czech Republic", "Denmark", "Dominican Republic",
	"Ecuador", "Egypt", "Eritrea", "Estonia", "Eswatini", "Ethiopia", "Fiji", "Finland", "France", "Georgia", "Germany",
	"Greece", "Grenada", "Hungary", "India", "Indonesia", "Iran", "Ireland", "Israel", "Italy", "Japan", "Jordan",
	"Korea, South", "Latvia", "Lebanon", "Lesotho", "Liberia", "Libya", "Lithuania", "Luxembourg", "Malawi", "Malaysia",
	"Mexico", "Moldova", "Monaco", "Mongolia", "Netherlands", "New Zealand", "Niger", "Nigeria", "North Macedonia", "Norway",
	"Oman", "Pakistan", "Panama", "Peru", "Philippines", "Poland", "Portugal", "Qatar", "Romania", "Saint Kitts and Nevis",
	"Saint Vincent and the Grenadines", "Serbia", "Seychelles", "Singapore", "Slovakia", "Slovenia", "South Africa",
	"Spain", "Sri Lanka", "Sweden", "Switzerland", "Taiwan", "Tajikistan", "Thailand", "Trinidad and Tobago", "Turkey",
	"Uganda", "Ukraine", "United Arab Emirates", "United Kingdom", "United States of America", "Uruguay", "Uzbekistan",
	"Vietnam", "Zambia", "Zimbabwe",
}

// Countries returns the selectable target countries in display order.
func Countries() []string {
	return slices.Clone(countries)
}
