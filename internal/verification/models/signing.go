package models

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"idflow/pkg/validation"
)

// SignRequest asks for the configured contract to be signed on behalf of a session.
type SignRequest struct {
	InterviewID string `json:"interviewId"`
	Token       string `json:"token" validate:"notblank"`
}

// Normalize trims surrounding whitespace.
func (r *SignRequest) Normalize() {
	r.InterviewID = strings.TrimSpace(r.InterviewID)
	r.Token = strings.TrimSpace(r.Token)
}

// ContractUpload is the body sent when uploading the contract document.
type ContractUpload struct {
	Base64Image string `json:"base64Image"`
}

// ContractUploadResult is the part of the upload response we need.
type ContractUploadResult struct {
	AdditionalInformation *struct {
		ContractID string `json:"contractId"`
	} `json:"additionalInformation"`
}

// ContractID returns the uploaded contract's identifier, or "" if the
// provider did not return one.
func (r ContractUploadResult) ContractID() string {
	if r.AdditionalInformation == nil {
		return ""
	}
	return r.AdditionalInformation.ContractID
}

// SignaturePlacement positions the user's signature on a contract page.
type SignaturePlacement struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Height      int    `json:"height"`
	PageNumber  int    `json:"pageNumber"`
	Orientation string `json:"orientation"`
}

// SignatureRequest asks the provider to stamp the signature captured during
// onboarding onto previously uploaded contracts.
type SignatureRequest struct {
	SignaturePositionsOnContracts           map[string][]SignaturePlacement `json:"signaturePositionsOnContracts"`
	IncludeSignedDocumentInResponse         bool                            `json:"includeSignedDocumentInResponse"`
	IncludeNom151SignatureInResponse        bool                            `json:"includeNom151SignatureInResponse"`
	IncludeSignedDocumentWithNom151Response bool                            `json:"includeSignedDocumentWithNom151InResponse"`
}

// NewSignatureRequest builds the request for a single contract and placement.
func NewSignatureRequest(contractID string, placement SignaturePlacement) SignatureRequest {
	return SignatureRequest{
		SignaturePositionsOnContracts:    map[string][]SignaturePlacement{contractID: {placement}},
		IncludeSignedDocumentInResponse:  true,
		IncludeNom151SignatureInResponse: true,
	}
}

// SignedContract bundles the provider's upload and signature responses.
type SignedContract struct {
	InterviewID   string          `json:"interviewId"`
	Token         string          `json:"token"`
	ContractData  json.RawMessage `json:"contractData"`
	SignatureData json.RawMessage `json:"signatureData"`
}

// SignatureSummary reports the decoded sizes of the documents embedded in a
// signature response, for logging. Documents that are not valid base64 count as 0.
type SignatureSummary struct {
	SignedDocumentBytes int
	Nom151Bytes         int
}

// SummarizeSignature inspects a raw signature response. Unknown shapes yield
// a zero summary.
func SummarizeSignature(raw json.RawMessage) SignatureSummary {
	var body struct {
		AdditionalInformation struct {
			SignedDocumentBase64 string `json:"signedDocumentBase64"`
			SignedDocumentNom151 string `json:"signedDocumentNom151"`
		} `json:"additionalInformation"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return SignatureSummary{}
	}
	return SignatureSummary{
		SignedDocumentBytes: decodedLen(body.AdditionalInformation.SignedDocumentBase64),
		Nom151Bytes:         decodedLen(body.AdditionalInformation.SignedDocumentNom151),
	}
}

func decodedLen(b64 string) int {
	doc, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return 0
	}
	return len(doc)
}

func (r *SignRequest) Validate() error {
	return validation.Validate(r)
}
