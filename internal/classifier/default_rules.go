package classifier

import (
	"github.com/pubdash/classifier/internal/domain"
)

// The built-in rule table. Patterns match against normalized text (already
// lower-cased, accents stripped), so every pattern here is lower case.
// Plain substrings stay substrings; regex syntax is used only where a
// pattern genuinely needs alternation or optional fragments.
//
// The table is seed data for deployments without a rule database and the
// fixture the integration tests run against. Deployments normally manage
// rules through the API and the pattern_rules table.

// tierRule is the compact declaration form used by the tables below.
type tierRule struct {
	pattern  string
	category domain.Category
}

// Venue tier: publication-venue name fragments and path tokens surviving in
// proxied URLs. Highest precision signal.
var venueRules = []tierRule{
	{"lancet oncol", domain.CategoryOncology},
	{"jama oncol", domain.CategoryOncology},
	{"j clin oncol", domain.CategoryOncology},
	{"ann oncol", domain.CategoryOncology},
	{"cancer res", domain.CategoryOncology},
	{"jnci", domain.CategoryOncology},
	{"int j cancer", domain.CategoryOncology},
	{"circulation", domain.CategoryCardiology},
	{"eur heart j", domain.CategoryCardiology},
	{"j am coll cardiol", domain.CategoryCardiology},
	{"jacc", domain.CategoryCardiology},
	{"heart rhythm", domain.CategoryCardiology},
	{"am j cardiol", domain.CategoryCardiology},
	{"diabetes care", domain.CategoryEndocrinology},
	{"diabetologia", domain.CategoryEndocrinology},
	{"j clin endocrinol", domain.CategoryEndocrinology},
	{"thyroid", domain.CategoryEndocrinology},
	{"diabet med", domain.CategoryEndocrinology},
	{"lancet neurol", domain.CategoryNeurology},
	{"ann neurol", domain.CategoryNeurology},
	{"j neurosci", domain.CategoryNeurology},
	{"brain res", domain.CategoryNeurology},
	{"stroke", domain.CategoryNeurology},
	{"epilepsia", domain.CategoryNeurology},
	{"lancet infect", domain.CategoryInfectiousDis},
	{"clin infect dis", domain.CategoryInfectiousDis},
	{"j infect", domain.CategoryInfectiousDis},
	{"emerg infect dis", domain.CategoryInfectiousDis},
	{"antimicrob agents", domain.CategoryInfectiousDis},
	{"bmj open", domain.CategoryPublicHealth},
	{"bmjopen", domain.CategoryPublicHealth},
	{"lancet public health", domain.CategoryPublicHealth},
	{"am j public health", domain.CategoryPublicHealth},
	{"public health rep", domain.CategoryPublicHealth},
	{"bmc public health", domain.CategoryPublicHealth},
	{"int j epidemiol", domain.CategoryEpidemiology},
	{"am j epidemiol", domain.CategoryEpidemiology},
	{"epidemiology", domain.CategoryEpidemiology},
	{"eur j epidemiol", domain.CategoryEpidemiology},
	{"pediatrics", domain.CategoryPediatrics},
	{"j pediatr", domain.CategoryPediatrics},
	{"arch dis child", domain.CategoryPediatrics},
	{"jama pediatr", domain.CategoryPediatrics},
	{"j am geriatr", domain.CategoryGeriatrics},
	{"age ageing", domain.CategoryGeriatrics},
	{"j gerontol", domain.CategoryGeriatrics},
	{"lancet psychiatry", domain.CategoryMentalHealth},
	{"jama psychiatry", domain.CategoryMentalHealth},
	{"am j psychiatry", domain.CategoryMentalHealth},
	{"br j psychiatry", domain.CategoryMentalHealth},
	{"psychol med", domain.CategoryMentalHealth},
	{"j adv nurs", domain.CategoryNursing},
	{"nurs res", domain.CategoryNursing},
	{"int j nurs", domain.CategoryNursing},
	{"j clin nurs", domain.CategoryNursing},
	{"ann surg", domain.CategorySurgery},
	{"jama surg", domain.CategorySurgery},
	{"br j surg", domain.CategorySurgery},
	{"surg endosc", domain.CategorySurgery},
	{"radiology", domain.CategoryImaging},
	{"eur radiol", domain.CategoryImaging},
	{"j magn reson", domain.CategoryImaging},
	{"am j roentgenol", domain.CategoryImaging},
	{"nat genet", domain.CategoryGenetics},
	{"am j hum genet", domain.CategoryGenetics},
	{"genome res", domain.CategoryGenetics},
	{"hum mol genet", domain.CategoryGenetics},
	{"j immunol", domain.CategoryImmunology},
	{"nat immunol", domain.CategoryImmunology},
	{"immunity", domain.CategoryImmunology},
	{"clin pharmacol", domain.CategoryPharmacology},
	{"br j pharmacol", domain.CategoryPharmacology},
	{"drug saf", domain.CategoryPharmacology},
	{"health aff", domain.CategoryHealthPolicy},
	{"health policy", domain.CategoryHealthPolicy},
	{"milbank q", domain.CategoryHealthPolicy},
	{"acad med", domain.CategoryMedicalEducation},
	{"med educ", domain.CategoryMedicalEducation},
	{"bmc med educ", domain.CategoryMedicalEducation},
	{"bioinformatics", domain.CategoryBioinformatics},
	{"nucleic acids res", domain.CategoryBioinformatics},
	{"bmc bioinformatics", domain.CategoryBioinformatics},
	{"plos comput biol", domain.CategoryBioinformatics},
	{"ann emerg med", domain.CategoryEmergencyMed},
	{"emerg med j", domain.CategoryEmergencyMed},
	{"resuscitation", domain.CategoryEmergencyMed},
	{"obstet gynecol", domain.CategoryObstetrics},
	{"am j obstet", domain.CategoryObstetrics},
	{"bjog", domain.CategoryObstetrics},
	{"ophthalmology", domain.CategoryOphthalmology},
	{"br j ophthalmol", domain.CategoryOphthalmology},
	{"jama ophthalmol", domain.CategoryOphthalmology},
	{"j bone joint surg", domain.CategoryOrthopedics},
	{"clin orthop", domain.CategoryOrthopedics},
	{"j arthroplasty", domain.CategoryOrthopedics},
	{"j am acad dermatol", domain.CategoryDermatology},
	{"br j dermatol", domain.CategoryDermatology},
	{"jama dermatol", domain.CategoryDermatology},
	{"gastroenterology", domain.CategoryGastro},
	{"gut", domain.CategoryGastro},
	{"am j gastroenterol", domain.CategoryGastro},
	{"hepatology", domain.CategoryGastro},
	{"kidney int", domain.CategoryNephrology},
	{"j am soc nephrol", domain.CategoryNephrology},
	{"nephrol dial", domain.CategoryNephrology},
	{"am j respir", domain.CategoryRespiratory},
	{"thorax", domain.CategoryRespiratory},
	{"chest", domain.CategoryRespiratory},
	{"eur respir j", domain.CategoryRespiratory},
	{"ann rheum dis", domain.CategoryRheumatology},
	{"arthritis rheum", domain.CategoryRheumatology},
	{"rheumatology", domain.CategoryRheumatology},
}

// Keyword tier: topical vocabulary (disease names, methods terms, domain
// phrases). Medium precision; several independent hits can outweigh a
// single ambiguous venue token.
var keywordRules = []tierRule{
	{"tumor", domain.CategoryOncology},
	{"tumour", domain.CategoryOncology},
	{"carcinoma", domain.CategoryOncology},
	{"chemotherapy", domain.CategoryOncology},
	{"metastasis", domain.CategoryOncology},
	{"metastatic", domain.CategoryOncology},
	{"leukemia", domain.CategoryOncology},
	{"lymphoma", domain.CategoryOncology},
	{"melanoma", domain.CategoryOncology},
	{"oncolog", domain.CategoryOncology},
	{"radiotherapy", domain.CategoryOncology},
	{"myocardial", domain.CategoryCardiology},
	{"cardiovascular", domain.CategoryCardiology},
	{"atrial fibrillation", domain.CategoryCardiology},
	{"heart failure", domain.CategoryCardiology},
	{"coronary", domain.CategoryCardiology},
	{"hypertension", domain.CategoryCardiology},
	{"arrhythmia", domain.CategoryCardiology},
	{"diabet", domain.CategoryEndocrinology},
	{"glycemic", domain.CategoryEndocrinology},
	{"glycaemic", domain.CategoryEndocrinology},
	{"insulin", domain.CategoryEndocrinology},
	{"thyroid", domain.CategoryEndocrinology},
	{"hba1c", domain.CategoryEndocrinology},
	{"metabolic syndrome", domain.CategoryEndocrinology},
	{"alzheimer", domain.CategoryNeurology},
	{"parkinson", domain.CategoryNeurology},
	{"epilep", domain.CategoryNeurology},
	{"dementia", domain.CategoryNeurology},
	{"neurodegenerat", domain.CategoryNeurology},
	{"multiple sclerosis", domain.CategoryNeurology},
	{"covid", domain.CategoryPublicHealth},
	{"sars-cov-2", domain.CategoryPublicHealth},
	{"public health", domain.CategoryPublicHealth},
	{"health promotion", domain.CategoryPublicHealth},
	{"vaccination campaign", domain.CategoryPublicHealth},
	{"health equity", domain.CategoryPublicHealth},
	{"tuberculosis", domain.CategoryInfectiousDis},
	{"hiv", domain.CategoryInfectiousDis},
	{"malaria", domain.CategoryInfectiousDis},
	{"antibiotic resistance", domain.CategoryInfectiousDis},
	{"antimicrobial", domain.CategoryInfectiousDis},
	{"sepsis", domain.CategoryInfectiousDis},
	{"influenza", domain.CategoryInfectiousDis},
	{"cohort study", domain.CategoryEpidemiology},
	{"case-control", domain.CategoryEpidemiology},
	{"incidence rate", domain.CategoryEpidemiology},
	{"prevalence", domain.CategoryEpidemiology},
	{"surveillance data", domain.CategoryEpidemiology},
	{"neonatal", domain.CategoryPediatrics},
	{"preterm", domain.CategoryPediatrics},
	{"childhood obesity", domain.CategoryPediatrics},
	{"pediatric", domain.CategoryPediatrics},
	{"paediatric", domain.CategoryPediatrics},
	{"frailty", domain.CategoryGeriatrics},
	{"older adults", domain.CategoryGeriatrics},
	{"nursing home", domain.CategoryGeriatrics},
	{"long-term care", domain.CategoryGeriatrics},
	{"depression", domain.CategoryMentalHealth},
	{"anxiety", domain.CategoryMentalHealth},
	{"schizophrenia", domain.CategoryMentalHealth},
	{"suicid", domain.CategoryMentalHealth},
	{"bipolar", domain.CategoryMentalHealth},
	{"psychotherapy", domain.CategoryMentalHealth},
	{"nursing practice", domain.CategoryNursing},
	{"nurse-led", domain.CategoryNursing},
	{"patient-centered care", domain.CategoryNursing},
	{"laparoscop", domain.CategorySurgery},
	{"postoperative", domain.CategorySurgery},
	{"surgical outcome", domain.CategorySurgery},
	{"resection", domain.CategorySurgery},
	{"magnetic resonance", domain.CategoryImaging},
	{"computed tomography", domain.CategoryImaging},
	{"ultrasound", domain.CategoryImaging},
	{"radiomic", domain.CategoryImaging},
	{"pet/ct", domain.CategoryImaging},
	{"genome-wide", domain.CategoryGenetics},
	{"gwas", domain.CategoryGenetics},
	{"crispr", domain.CategoryGenetics},
	{"exome", domain.CategoryGenetics},
	{"polygenic", domain.CategoryGenetics},
	{"autoimmun", domain.CategoryImmunology},
	{"cytokine", domain.CategoryImmunology},
	{"t cell", domain.CategoryImmunology},
	{"monoclonal antibod", domain.CategoryImmunology},
	{"pharmacokinetic", domain.CategoryPharmacology},
	{"drug interaction", domain.CategoryPharmacology},
	{"adverse drug", domain.CategoryPharmacology},
	{"dose-response", domain.CategoryPharmacology},
	{"health insurance", domain.CategoryHealthPolicy},
	{"medicaid", domain.CategoryHealthPolicy},
	{"medicare", domain.CategoryHealthPolicy},
	{"cost-effectiveness", domain.CategoryHealthPolicy},
	{"health system reform", domain.CategoryHealthPolicy},
	{"medical student", domain.CategoryMedicalEducation},
	{"residency training", domain.CategoryMedicalEducation},
	{"curriculum", domain.CategoryMedicalEducation},
	{"osce", domain.CategoryMedicalEducation},
	{"sequence alignment", domain.CategoryBioinformatics},
	{"rna-seq", domain.CategoryBioinformatics},
	{"machine learning pipeline", domain.CategoryBioinformatics},
	{"transcriptom", domain.CategoryBioinformatics},
	{"proteom", domain.CategoryBioinformatics},
	{"emergency department", domain.CategoryEmergencyMed},
	{"triage", domain.CategoryEmergencyMed},
	{"resuscitation", domain.CategoryEmergencyMed},
	{"prehospital", domain.CategoryEmergencyMed},
	{"pregnancy", domain.CategoryObstetrics},
	{"cesarean", domain.CategoryObstetrics},
	{"caesarean", domain.CategoryObstetrics},
	{"preeclampsia", domain.CategoryObstetrics},
	{"in vitro fertilization", domain.CategoryObstetrics},
	{"glaucoma", domain.CategoryOphthalmology},
	{"retinal", domain.CategoryOphthalmology},
	{"cataract", domain.CategoryOphthalmology},
	{"macular degeneration", domain.CategoryOphthalmology},
	{"arthroplasty", domain.CategoryOrthopedics},
	{"fracture fixation", domain.CategoryOrthopedics},
	{"anterior cruciate", domain.CategoryOrthopedics},
	{"spinal fusion", domain.CategoryOrthopedics},
	{"psoriasis", domain.CategoryDermatology},
	{"eczema", domain.CategoryDermatology},
	{"atopic dermatitis", domain.CategoryDermatology},
	{"skin lesion", domain.CategoryDermatology},
	{"inflammatory bowel", domain.CategoryGastro},
	{"crohn", domain.CategoryGastro},
	{"colitis", domain.CategoryGastro},
	{"cirrhosis", domain.CategoryGastro},
	{"colonoscopy", domain.CategoryGastro},
	{"chronic kidney disease", domain.CategoryNephrology},
	{"dialysis", domain.CategoryNephrology},
	{"renal transplant", domain.CategoryNephrology},
	{"glomerul", domain.CategoryNephrology},
	{"asthma", domain.CategoryRespiratory},
	{"copd", domain.CategoryRespiratory},
	{"pulmonary fibrosis", domain.CategoryRespiratory},
	{"sleep apnea", domain.CategoryRespiratory},
	{"rheumatoid arthritis", domain.CategoryRheumatology},
	{"lupus", domain.CategoryRheumatology},
	{"ankylosing spondylitis", domain.CategoryRheumatology},
	{"gout", domain.CategoryRheumatology},
}

// Author tier: name fragments of prolific author clusters associated with a
// sub-domain in the indexed corpus. Corroborating and fallback signal only;
// the tier weight keeps a lone author hit below the confidence floor only
// when the floor is raised, so these fragments are kept deliberately
// specific (surname plus initial, not bare surnames).
var authorRules = []tierRule{
	{"holman rr", domain.CategoryEndocrinology},
	{"zinman b", domain.CategoryEndocrinology},
	{"nauck ma", domain.CategoryEndocrinology},
	{"braunwald e", domain.CategoryCardiology},
	{"yusuf s", domain.CategoryCardiology},
	{"fauci as", domain.CategoryInfectiousDis},
	{"osterholm mt", domain.CategoryInfectiousDis},
	{"sliwinski m", domain.CategoryGeriatrics},
	{"rothman kj", domain.CategoryEpidemiology},
	{"greenland s", domain.CategoryEpidemiology},
	{"vanderweele tj", domain.CategoryEpidemiology},
	{"eisenberg mj", domain.CategoryCardiology},
	{"sedrakyan a", domain.CategoryHealthPolicy},
	{"topol ej", domain.CategoryCardiology},
	{"collins fs", domain.CategoryGenetics},
	{"lander es", domain.CategoryGenetics},
	{"ioannidis jp", domain.CategoryEpidemiology},
}

// DOI tier: registrant-prefix-to-publisher heuristics, matched against the
// bare registrant prefix ("10.1200"). Only single-imprint society prefixes
// belong here; a multi-journal house prefix like 10.1016 or 10.1111 says
// nothing about topic. Lowest precision, and on its own can never clear the
// confidence floor.
var doiRules = []tierRule{
	{"10.1200", domain.CategoryOncology},       // American Society of Clinical Oncology
	{"10.1158", domain.CategoryOncology},       // American Association for Cancer Research
	{"10.1002", domain.CategoryOncology},       // Wiley; dominated by Cancer / Int J Cancer in the corpus
	{"10.1161", domain.CategoryCardiology},     // American Heart Association
	{"10.2337", domain.CategoryEndocrinology},  // American Diabetes Association
	{"10.1210", domain.CategoryEndocrinology},  // Endocrine Society
	{"10.1212", domain.CategoryNeurology},      // American Academy of Neurology
	{"10.1523", domain.CategoryNeurology},      // Society for Neuroscience
	{"10.3201", domain.CategoryInfectiousDis},  // Emerging Infectious Diseases
	{"10.2105", domain.CategoryPublicHealth},   // American Public Health Association
	{"10.1542", domain.CategoryPediatrics},     // American Academy of Pediatrics
	{"10.1176", domain.CategoryMentalHealth},   // American Psychiatric Association
	{"10.1148", domain.CategoryImaging},        // Radiological Society of North America
	{"10.4049", domain.CategoryImmunology},     // American Association of Immunologists
	{"10.1124", domain.CategoryPharmacology},   // ASPET
	{"10.1377", domain.CategoryHealthPolicy},   // Health Affairs
	{"10.2196", domain.CategoryHealthPolicy},   // JMIR Publications
	{"10.2106", domain.CategoryOrthopedics},    // Journal of Bone and Joint Surgery
	{"10.1681", domain.CategoryNephrology},     // American Society of Nephrology
	{"10.2215", domain.CategoryNephrology},     // Clinical Journal of the ASN
	{"10.1164", domain.CategoryRespiratory},    // American Thoracic Society
	{"10.1513", domain.CategoryRespiratory},    // ATS Annals
	{"10.1167", domain.CategoryOphthalmology},  // ARVO
	{"10.3928", domain.CategoryGeriatrics},     // SLACK; gerontological nursing imprints
	{"10.3171", domain.CategorySurgery},        // Journal of Neurosurgery Publishing Group
	{"10.1089", domain.CategoryBioinformatics}, // Mary Ann Liebert; J Comput Biol
}

// DefaultRules returns the built-in rule table with sequential IDs assigned
// in tier order.
func DefaultRules() []domain.PatternRule {
	groups := []struct {
		tier  domain.Tier
		rules []tierRule
	}{
		{domain.TierVenue, venueRules},
		{domain.TierKeyword, keywordRules},
		{domain.TierAuthor, authorRules},
		{domain.TierDOI, doiRules},
	}

	out := make([]domain.PatternRule, 0, len(venueRules)+len(keywordRules)+len(authorRules)+len(doiRules))
	id := 1
	for _, g := range groups {
		for _, tr := range g.rules {
			out = append(out, domain.PatternRule{
				ID:       id,
				Pattern:  tr.pattern,
				Category: tr.category,
				Tier:     g.tier,
				Enabled:  true,
			})
			id++
		}
	}
	return out
}
