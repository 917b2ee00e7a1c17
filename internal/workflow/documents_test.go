package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiredDocumentsPerPosition(t *testing.T) {
	architect := RequiredDocuments(PositionArchitect)
	assert.Contains(t, architect, DocISSECOACert)
	assert.NotContains(t, architect, DocExperienceCert)

	structural := RequiredDocuments(PositionStructuralEngineer)
	assert.Contains(t, structural, DocISSECOACert)
	assert.Contains(t, structural, DocExperienceCert)

	supervisor := RequiredDocuments(PositionSupervisorGrade2)
	assert.Contains(t, supervisor, DocExperienceCert)
	assert.NotContains(t, supervisor, DocISSECOACert)

	// The base set applies to everyone.
	for _, docs := range [][]string{architect, structural, supervisor} {
		assert.Contains(t, docs, DocPAN)
		assert.Contains(t, docs, DocAadhar)
		assert.Contains(t, docs, DocDegree)
		assert.Contains(t, docs, DocSelfDeclaration)
	}
}

func TestMissingDocuments(t *testing.T) {
	uploaded := []string{DocPAN, DocAadhar, DocDegree, DocMarksheet, DocSelfDeclaration, DocProfilePicture}
	missing := MissingDocuments(PositionLicenceEngineer, uploaded)
	assert.Equal(t, []string{DocExperienceCert}, missing)

	complete := append(uploaded, DocExperienceCert)
	assert.Empty(t, MissingDocuments(PositionLicenceEngineer, complete))

	// Extra documents never count against the applicant.
	extra := append(complete, "ADDITIONAL")
	assert.Empty(t, MissingDocuments(PositionLicenceEngineer, extra))
}
