package domain

// Category is a topical subject tag assigned to a publication record.
type Category string

// The canonical subject taxonomy. The order below is the stable iteration
// order for every deterministic output (count tables, category listings).
// Order carries no scoring significance.
const (
	CategoryOncology         Category = "oncology"
	CategoryCardiology       Category = "cardiology"
	CategoryEndocrinology    Category = "endocrinology"
	CategoryNeurology        Category = "neurology"
	CategoryInfectiousDis    Category = "infectious_disease"
	CategoryPublicHealth     Category = "public_health"
	CategoryEpidemiology     Category = "epidemiology"
	CategoryPediatrics       Category = "pediatrics"
	CategoryGeriatrics       Category = "geriatrics"
	CategoryMentalHealth     Category = "mental_health"
	CategoryNursing          Category = "nursing"
	CategorySurgery          Category = "surgery"
	CategoryImaging          Category = "imaging"
	CategoryGenetics         Category = "genetics"
	CategoryImmunology       Category = "immunology"
	CategoryPharmacology     Category = "pharmacology"
	CategoryHealthPolicy     Category = "health_policy"
	CategoryMedicalEducation Category = "medical_education"
	CategoryBioinformatics   Category = "bioinformatics"
	CategoryEmergencyMed     Category = "emergency_medicine"
	CategoryObstetrics       Category = "obstetrics_gynecology"
	CategoryOphthalmology    Category = "ophthalmology"
	CategoryOrthopedics      Category = "orthopedics"
	CategoryDermatology      Category = "dermatology"
	CategoryGastro           Category = "gastroenterology"
	CategoryNephrology       Category = "nephrology"
	CategoryRespiratory      Category = "respiratory"
	CategoryRheumatology     Category = "rheumatology"

	// CategoryOther is the distinguished overflow bucket for records with no
	// rule match or insufficient confidence.
	CategoryOther Category = "other"
)

// categories is the ordered enumeration, overflow bucket last.
var categories = []Category{
	CategoryOncology,
	CategoryCardiology,
	CategoryEndocrinology,
	CategoryNeurology,
	CategoryInfectiousDis,
	CategoryPublicHealth,
	CategoryEpidemiology,
	CategoryPediatrics,
	CategoryGeriatrics,
	CategoryMentalHealth,
	CategoryNursing,
	CategorySurgery,
	CategoryImaging,
	CategoryGenetics,
	CategoryImmunology,
	CategoryPharmacology,
	CategoryHealthPolicy,
	CategoryMedicalEducation,
	CategoryBioinformatics,
	CategoryEmergencyMed,
	CategoryObstetrics,
	CategoryOphthalmology,
	CategoryOrthopedics,
	CategoryDermatology,
	CategoryGastro,
	CategoryNephrology,
	CategoryRespiratory,
	CategoryRheumatology,
	CategoryOther,
}

// Categories returns the full ordered taxonomy including the overflow bucket.
// The returned slice is a copy and safe to modify.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ValidCategory reports whether c is a member of the canonical taxonomy.
func ValidCategory(c Category) bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the category tag.
func (c Category) String() string {
	return string(c)
}

// IsOverflow reports whether c is the overflow bucket.
func (c Category) IsOverflow() bool {
	return c == CategoryOther
}
