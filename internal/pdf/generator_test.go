package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSignatures() []Signature {
	return []Signature{
		{Role: "assistant_engineer", SignedBy: "ae.sharma", SignedAt: time.Now(), Comments: "documents in order"},
		{Role: "executive_engineer", SignedBy: "ee.patil", SignedAt: time.Now()},
	}
}

func TestGenerateRecommendationForm(t *testing.T) {
	content, err := GenerateRecommendationForm(RecommendationData{
		ApplicationNo: "LIC-20260830-00001",
		ApplicantName: "R. Deshmukh",
		PositionType:  "LICENCE_ENGINEER",
		Signatures:    sampleSignatures(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, content)
	assert.Equal(t, "%PDF", string(content[:4]))
}

func TestGenerateLicenseCertificateWithQR(t *testing.T) {
	content, err := GenerateLicenseCertificate(CertificateData{
		CertificateNo: "CERT-2026-00042",
		ApplicationNo: "LIC-20260830-00001",
		ApplicantName: "R. Deshmukh",
		PositionType:  "LICENCE_ENGINEER",
		IssuedAt:      time.Now(),
		VerifyURL:     "https://portal.example.gov/certificates/CERT-2026-00042",
		Signatures:    sampleSignatures(),
	})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(content[:4]))
}

func TestGenerateLicenseCertificateWithoutQR(t *testing.T) {
	content, err := GenerateLicenseCertificate(CertificateData{
		CertificateNo: "CERT-2026-00043",
		ApplicantName: "S. Kulkarni",
		PositionType:  "ARCHITECT",
		IssuedAt:      time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(content[:4]))
}

func TestGenerateChallan(t *testing.T) {
	content, err := GenerateChallan(ChallanData{
		ChallanNo:     "CHL-LIC-20260830-00001",
		ApplicationNo: "LIC-20260830-00001",
		ApplicantName: "R. Deshmukh",
		PositionType:  "LICENCE_ENGINEER",
		Amount:        "1500.00",
		GeneratedAt:   time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(content[:4]))
}
