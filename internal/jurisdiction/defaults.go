package jurisdiction

// builtinConfigs returns a fresh copy of the default jurisdiction table
func builtinConfigs() map[Code]Config {
	all := NewFormSet(AllForms()...)

	return map[Code]Config{
		ACT: {
			Code:               ACT,
			FullName:           "Australian Capital Territory",
			EnabledForms:       all.Clone(),
			Distance:           DistanceRequirement{MinimumKm: 10, Enforced: true},
			VetSignOffRequired: true,
			RetentionYears:     7,
			CodeOfPractice:     "ACT Code of Practice for the Care of Sick, Injured and Orphaned Native Wildlife",
		},
		NSW: {
			Code:               NSW,
			FullName:           "New South Wales",
			EnabledForms:       all.Clone(),
			VetSignOffRequired: true,
			RetentionYears:     3,
			CodeOfPractice:     "Code of Practice for Injured, Sick and Orphaned Protected Fauna (NSW)",
		},
		VIC: {
			Code:               VIC,
			FullName:           "Victoria",
			EnabledForms:       NewFormSet(FormReleaseChecklist, FormIncidentLog, FormCarerLicence),
			VetSignOffRequired: false,
			RetentionYears:     5,
			CodeOfPractice:     "Wildlife Rehabilitator Authorisation Guidelines (VIC)",
		},
		QLD: {
			Code:               QLD,
			FullName:           "Queensland",
			EnabledForms:       all.Clone(),
			VetSignOffRequired: false,
			RetentionYears:     5,
			CodeOfPractice:     "Code of Practice: Care of Sick, Injured or Orphaned Protected Animals in Queensland",
		},
		WA: {
			Code:               WA,
			FullName:           "Western Australia",
			EnabledForms:       NewFormSet(FormReleaseChecklist, FormIncidentLog, FormCarerLicence),
			VetSignOffRequired: false,
			RetentionYears:     5,
			CodeOfPractice:     "Minimum Standards for Wildlife Rehabilitation in Western Australia",
		},
		SA: {
			Code:               SA,
			FullName:           "South Australia",
			EnabledForms:       NewFormSet(FormReleaseChecklist, FormHygieneLog, FormCarerLicence),
			VetSignOffRequired: false,
			RetentionYears:     5,
			CodeOfPractice:     "Code of Practice for the Rehabilitation of Sick, Injured and Orphaned Native Fauna (SA)",
		},
		TAS: {
			Code:               TAS,
			FullName:           "Tasmania",
			EnabledForms:       NewFormSet(FormReleaseChecklist, FormIncidentLog, FormCarerLicence),
			VetSignOffRequired: false,
			RetentionYears:     5,
			CodeOfPractice:     "Tasmanian Wildlife Rehabilitation Standards",
		},
		NT: {
			Code:               NT,
			FullName:           "Northern Territory",
			EnabledForms:       NewFormSet(FormReleaseChecklist, FormCarerLicence),
			VetSignOffRequired: false,
			RetentionYears:     5,
			CodeOfPractice:     "Northern Territory Wildlife Rehabilitation Guidelines",
		},
	}
}
