// Package pdf renders the system-generated documents: recommendation forms,
// license certificates, and payment challans. Callers store the returned
// bytes in the document store; nothing here touches the database.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

const municipalityName = "Municipal Corporation — Town Planning Department"

// Signature is one completed sign-off line on a generated document.
type Signature struct {
	Role     string
	SignedBy string
	SignedAt time.Time
	Comments string
}

// RecommendationData feeds the stage-1 recommendation form.
type RecommendationData struct {
	ApplicationNo string
	ApplicantName string
	PositionType  string
	Signatures    []Signature
}

// CertificateData feeds the license certificate.
type CertificateData struct {
	CertificateNo string
	ApplicationNo string
	ApplicantName string
	PositionType  string
	IssuedAt      time.Time
	// VerifyURL is embedded as a QR code so field officers can check
	// authenticity against the portal.
	VerifyURL  string
	Signatures []Signature
}

// ChallanData feeds the payment challan.
type ChallanData struct {
	ChallanNo     string
	ApplicationNo string
	ApplicantName string
	PositionType  string
	Amount        string
	GeneratedAt   time.Time
	PaymentRef    string
}

// GenerateRecommendationForm renders the stage-1 recommendation form with the
// sign-offs collected so far.
func GenerateRecommendationForm(data RecommendationData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, municipalityName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 10, "Recommendation Form", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 11)
	writeKV(pdf, "Application No", data.ApplicationNo)
	writeKV(pdf, "Applicant", data.ApplicantName)
	writeKV(pdf, "Position Applied", data.PositionType)
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Sign-offs", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, sig := range data.Signatures {
		line := fmt.Sprintf("%s — %s, signed %s", sig.Role, sig.SignedBy, sig.SignedAt.Format("02 Jan 2006 15:04"))
		pdf.CellFormat(0, 7, line, "", 1, "L", false, 0, "")
		if sig.Comments != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.CellFormat(0, 5, "    "+sig.Comments, "", 1, "L", false, 0, "")
			pdf.SetFont("Arial", "", 10)
		}
	}

	return output(pdf)
}

// GenerateLicenseCertificate renders the final license certificate with a
// verification QR code.
func GenerateLicenseCertificate(data CertificateData) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetLineWidth(1.2)
	pdf.Rect(8, 8, 281, 194, "D")

	pdf.SetY(25)
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 12, municipalityName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "License Certificate", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Certificate No: %s", data.CertificateNo), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.CellFormat(0, 8, "This is to certify that", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 15)
	pdf.CellFormat(0, 10, data.ApplicantName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("is licensed to practice as %s", data.PositionType), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Application No %s — issued %s", data.ApplicationNo, data.IssuedAt.Format("02 Jan 2006")), "", 1, "C", false, 0, "")

	if data.VerifyURL != "" {
		qrPng, err := qrcode.Encode(data.VerifyURL, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("failed to encode verification QR: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader("verify_qr", opts, bytes.NewReader(qrPng))
		pdf.ImageOptions("verify_qr", 248, 155, 32, 32, false, opts, 0, "")
	}

	pdf.SetY(160)
	pdf.SetFont("Arial", "", 10)
	for _, sig := range data.Signatures {
		pdf.CellFormat(0, 6, fmt.Sprintf("%s: %s (%s)", sig.Role, sig.SignedBy, sig.SignedAt.Format("02 Jan 2006")), "", 1, "L", false, 0, "")
	}

	return output(pdf)
}

// GenerateChallan renders the payment challan/receipt.
func GenerateChallan(data ChallanData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, municipalityName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 10, "Payment Challan", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 11)
	writeKV(pdf, "Challan No", data.ChallanNo)
	writeKV(pdf, "Application No", data.ApplicationNo)
	writeKV(pdf, "Applicant", data.ApplicantName)
	writeKV(pdf, "Position Applied", data.PositionType)
	writeKV(pdf, "License Fee", data.Amount)
	writeKV(pdf, "Generated", data.GeneratedAt.Format("02 Jan 2006 15:04"))
	if data.PaymentRef != "" {
		writeKV(pdf, "Gateway Reference", data.PaymentRef)
	}

	return output(pdf)
}

func writeKV(pdf *gofpdf.Fpdf, key, value string) {
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(55, 8, key, "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 8, value, "", 1, "L", false, 0, "")
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
