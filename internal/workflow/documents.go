package workflow

// Uploaded document types, mirrored from the model layer.
const (
	DocPAN             = "PAN"
	DocAadhar          = "AADHAR"
	DocDegree          = "DEGREE"
	DocMarksheet       = "MARKSHEET"
	DocExperienceCert  = "EXPERIENCE_CERTIFICATE"
	DocISSECOACert     = "ISSE_COA_CERTIFICATE"
	DocPropertyTax     = "PROPERTY_TAX_RECEIPT"
	DocSelfDeclaration = "SELF_DECLARATION"
	DocProfilePicture  = "PROFILE_PICTURE"
)

var baseDocuments = []string{
	DocPAN,
	DocAadhar,
	DocDegree,
	DocMarksheet,
	DocSelfDeclaration,
	DocProfilePicture,
}

// RequiredDocuments returns the document types an applicant must upload
// before submission, per position. Architects additionally prove COA
// registration; structural engineers the ISSE certificate; engineer and
// supervisor grades need experience proof.
func RequiredDocuments(position string) []string {
	docs := append([]string(nil), baseDocuments...)
	switch position {
	case PositionArchitect:
		docs = append(docs, DocISSECOACert)
	case PositionStructuralEngineer:
		docs = append(docs, DocISSECOACert, DocExperienceCert)
	case PositionLicenceEngineer, PositionSupervisorGrade1, PositionSupervisorGrade2:
		docs = append(docs, DocExperienceCert)
	}
	return docs
}

// MissingDocuments returns the required types absent from the uploaded set.
func MissingDocuments(position string, uploaded []string) []string {
	have := make(map[string]bool, len(uploaded))
	for _, d := range uploaded {
		have[d] = true
	}
	var missing []string
	for _, d := range RequiredDocuments(position) {
		if !have[d] {
			missing = append(missing, d)
		}
	}
	return missing
}
