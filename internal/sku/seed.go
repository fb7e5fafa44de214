package sku

// SampleSKUs is the starter catalogue loaded by the seed command.
func SampleSKUs() []CreateRequest {
	return []CreateRequest{
		{
			NDC:          "12345-678-90",
			Name:         "Aspirin 81mg Tablets",
			Manufacturer: "Generic Pharma",
			DosageForm:   "Tablet",
			Strength:     "81mg",
			PackageSize:  "100 tablets",
			Status:       StatusApproved,
		},
		{
			NDC:          "98765-432-10",
			Name:         "Ibuprofen 200mg Capsules",
			Manufacturer: "MedCorp",
			DosageForm:   "Capsule",
			Strength:     "200mg",
			PackageSize:  "50 capsules",
			Status:       StatusPendingReview,
		},
		{
			NDC:          "11111-222-33",
			Name:         "Acetaminophen 500mg Tablets",
			Manufacturer: "HealthPlus",
			DosageForm:   "Tablet",
			Strength:     "500mg",
			PackageSize:  "200 tablets",
			Status:       StatusApproved,
		},
	}
}
