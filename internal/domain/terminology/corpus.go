package terminology

// fallbackCorpus is served when the registry cannot answer. Order matters:
// Match preserves it.
var fallbackCorpus = []Entry{
	{
		ID:                  "mock-1",
		NamasteCode:         "NAM001",
		NamasteName:         "Madhumeha (Diabetes Mellitus)",
		ICDCode:             "E11.9",
		ICDName:             "Type 2 diabetes mellitus without complications",
		VernacularName:      "मधुमेह",
		Category:            "Endocrine",
		Description:         "A metabolic disorder characterized by high blood sugar levels",
		Synonyms:            []string{"Diabetes", "High Blood Sugar", "Prameha"},
		TreatmentApproaches: []string{"allopathic", "ayurvedic", "mixed"},
	},
	{
		ID:                  "mock-2",
		NamasteCode:         "NAM002",
		NamasteName:         "Jwara (Fever)",
		ICDCode:             "R50.9",
		ICDName:             "Fever unspecified",
		VernacularName:      "ज्वर",
		Category:            "Symptoms",
		Description:         "Elevation of body temperature above normal",
		Synonyms:            []string{"Fever", "Pyrexia", "Taap"},
		TreatmentApproaches: []string{"allopathic", "ayurvedic", "unani"},
	},
	{
		ID:                  "mock-3",
		NamasteCode:         "NAM003",
		NamasteName:         "Amavata (Rheumatoid Arthritis)",
		ICDCode:             "M06.9",
		ICDName:             "Rheumatoid arthritis unspecified",
		VernacularName:      "आमवात",
		Category:            "Musculoskeletal",
		Description:         "Chronic inflammatory disorder affecting joints",
		Synonyms:            []string{"Rheumatoid Arthritis", "Joint Pain", "Sandhi Vaat"},
		TreatmentApproaches: []string{"allopathic", "ayurvedic"},
	},
	{
		ID:                  "mock-4",
		NamasteCode:         "NAM004",
		NamasteName:         "Hridroga (Heart Disease)",
		ICDCode:             "I25.9",
		ICDName:             "Chronic ischemic heart disease unspecified",
		VernacularName:      "हृदय रोग",
		Category:            "Cardiovascular",
		Description:         "Disease affecting the heart and blood vessels",
		Synonyms:            []string{"Heart Disease", "Cardiac Disease", "Dil Ki Bimari"},
		TreatmentApproaches: []string{"allopathic", "ayurvedic", "mixed"},
	},
	{
		ID:                  "mock-5",
		NamasteCode:         "NAM005",
		NamasteName:         "Raktachapa (Hypertension)",
		ICDCode:             "I10",
		ICDName:             "Essential hypertension",
		VernacularName:      "उच्च रक्तचाप",
		Category:            "Cardiovascular",
		Description:         "High blood pressure condition",
		Synonyms:            []string{"High Blood Pressure", "Hypertension", "High BP"},
		TreatmentApproaches: []string{"allopathic", "ayurvedic"},
	},
	{
		ID:                  "mock-6",
		NamasteCode:         "NAM006",
		NamasteName:         "Kasa (Cough)",
		ICDCode:             "R05",
		ICDName:             "Cough",
		VernacularName:      "खांसी",
		Category:            "Respiratory",
		Description:         "Sudden expulsion of air from lungs",
		Synonyms:            []string{"Cough", "Khasi", "Tussis"},
		TreatmentApproaches: []string{"allopathic", "ayurvedic", "unani"},
	},
	{
		ID:                  "mock-7",
		NamasteCode:         "NAM007",
		NamasteName:         "Shwasa (Asthma)",
		ICDCode:             "J45.9",
		ICDName:             "Asthma unspecified",
		VernacularName:      "दमा",
		Category:            "Respiratory",
		Description:         "Chronic respiratory condition with airway inflammation",
		Synonyms:            []string{"Asthma", "Breathing Problems", "Saans Ki Bimari"},
		TreatmentApproaches: []string{"allopathic", "ayurvedic"},
	},
	{
		ID:                  "mock-8",
		NamasteCode:         "NAM008",
		NamasteName:         "Arsha (Hemorrhoids)",
		ICDCode:             "K64.9",
		ICDName:             "Hemorrhoids unspecified",
		VernacularName:      "बवासीर",
		Category:            "Gastrointestinal",
		Description:         "Swollen blood vessels in rectum and anus",
		Synonyms:            []string{"Piles", "Hemorrhoids", "Bawaseer"},
		TreatmentApproaches: []string{"allopathic", "ayurvedic"},
	},
}

// FallbackCorpus returns a copy of the bundled corpus.
func FallbackCorpus() []Entry {
	out := make([]Entry, len(fallbackCorpus))
	for i, e := range fallbackCorpus {
		out[i] = e.normalized()
	}
	return out
}

// LookupFallback returns the bundled entry with the given ID.
func LookupFallback(id string) (Entry, bool) {
	for _, e := range fallbackCorpus {
		if e.ID == id {
			return e.normalized(), true
		}
	}
	return Entry{}, false
}
