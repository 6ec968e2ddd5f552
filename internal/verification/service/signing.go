package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"

	"idflow/internal/verification/models"
	"idflow/internal/verification/tracer"
	dErrors "idflow/pkg/domain-errors"
	"idflow/pkg/requestcontext"
)

// SignContract uploads the configured contract to the session identified by
// req.Token and stamps the session's signature on it. The signature call is
// only made once the upload returned a contract ID.
func (s *Service) SignContract(ctx context.Context, req models.SignRequest) (models.SignedContract, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return models.SignedContract{}, err
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanContractSign,
		tracer.String(tracer.AttrInterviewID, tracer.HashID(req.InterviewID)),
	)
	signed, err := s.signContract(ctx, req)
	span.End(err)
	if err != nil {
		s.metrics.RecordContractSigned("error")
		s.logger.ErrorContext(ctx, "contract signing failed",
			"interview_id", req.InterviewID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return models.SignedContract{}, err
	}
	s.metrics.RecordContractSigned("ok")
	return signed, nil
}

func (s *Service) signContract(ctx context.Context, req models.SignRequest) (models.SignedContract, error) {
	doc, err := os.ReadFile(s.contract.Path)
	if err != nil {
		return models.SignedContract{}, dErrors.Wrap(err, dErrors.CodeInternal, "contract document unavailable")
	}

	contractData, err := s.provider.AddContract(ctx, req.Token, base64.StdEncoding.EncodeToString(doc))
	if err != nil {
		return models.SignedContract{}, upstream(err)
	}

	var upload models.ContractUploadResult
	if err := json.Unmarshal(contractData, &upload); err != nil || upload.ContractID() == "" {
		return models.SignedContract{}, dErrors.New(dErrors.CodeMalformedUpstream, "contract upload response is missing additionalInformation.contractId")
	}

	p := s.contract.Placement
	signReq := models.NewSignatureRequest(upload.ContractID(), models.SignaturePlacement{
		X:           p.X,
		Y:           p.Y,
		Height:      p.Height,
		PageNumber:  p.PageNumber,
		Orientation: p.Orientation,
	})
	signatureData, err := s.provider.AttachSignature(ctx, req.Token, signReq)
	if err != nil {
		return models.SignedContract{}, upstream(err)
	}

	summary := models.SummarizeSignature(signatureData)
	s.logger.InfoContext(ctx, "contract signed",
		"interview_id", req.InterviewID,
		"contract_id", upload.ContractID(),
		"signed_document_bytes", summary.SignedDocumentBytes,
		"nom151_bytes", summary.Nom151Bytes,
		"request_id", requestcontext.RequestID(ctx),
	)
	return models.SignedContract{
		InterviewID:   req.InterviewID,
		Token:         req.Token,
		ContractData:  contractData,
		SignatureData: signatureData,
	}, nil
}
