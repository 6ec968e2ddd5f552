package service

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	"idflow/internal/platform/config"
	"idflow/internal/verification/models"
	"idflow/internal/verification/provider"
	dErrors "idflow/pkg/domain-errors"
)

func (s *ServiceSuite) contractService(content []byte) *Service {
	path := filepath.Join(s.T().TempDir(), "contract.pdf")
	if content != nil {
		s.Require().NoError(os.WriteFile(path, content, 0o600))
	}
	return s.newService(WithContract(config.ContractConfig{
		Path: path,
		Placement: config.SignaturePlacement{
			X: 100, Y: 100, Height: 200, PageNumber: 1, Orientation: "ORIENTATION_NORMAL",
		},
	}))
}

func (s *ServiceSuite) TestSignContract_UploadsThenSigns() {
	svc := s.contractService([]byte("%PDF-1.7"))
	upload := json.RawMessage(`{"success":true,"additionalInformation":{"contractId":"de57#Contract1"}}`)
	signature := json.RawMessage(`{"success":true,"additionalInformation":{"signedDocumentBase64":"JVBE"}}`)

	gomock.InOrder(
		s.mockProvider.EXPECT().AddContract(gomock.Any(), "tok-1", base64.StdEncoding.EncodeToString([]byte("%PDF-1.7"))).
			Return(upload, nil),
		s.mockProvider.EXPECT().AttachSignature(gomock.Any(), "tok-1", models.SignatureRequest{
			SignaturePositionsOnContracts: map[string][]models.SignaturePlacement{
				"de57#Contract1": {{X: 100, Y: 100, Height: 200, PageNumber: 1, Orientation: "ORIENTATION_NORMAL"}},
			},
			IncludeSignedDocumentInResponse:  true,
			IncludeNom151SignatureInResponse: true,
		}).Return(signature, nil),
	)

	signed, err := svc.SignContract(s.ctx, models.SignRequest{InterviewID: "int-1", Token: "tok-1"})

	s.Require().NoError(err)
	s.Equal("int-1", signed.InterviewID)
	s.Equal("tok-1", signed.Token)
	s.JSONEq(string(upload), string(signed.ContractData))
	s.JSONEq(string(signature), string(signed.SignatureData))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ContractsSignedTotal.WithLabelValues("ok")))
}

func (s *ServiceSuite) TestSignContract_MissingContractIDMakesOneCall() {
	svc := s.contractService([]byte("%PDF"))
	s.mockProvider.EXPECT().AddContract(gomock.Any(), "tok-1", gomock.Any()).
		Return(json.RawMessage(`{"success":true}`), nil).Times(1)
	// no AttachSignature expectation

	_, err := svc.SignContract(s.ctx, models.SignRequest{InterviewID: "int-1", Token: "tok-1"})

	s.True(dErrors.HasCode(err, dErrors.CodeMalformedUpstream))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ContractsSignedTotal.WithLabelValues("error")))
}

func (s *ServiceSuite) TestSignContract_MissingToken() {
	svc := s.contractService([]byte("%PDF"))

	_, err := svc.SignContract(s.ctx, models.SignRequest{InterviewID: "int-1"})

	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal("Missing required parameter token", err.Error())
}

func (s *ServiceSuite) TestSignContract_UnreadableContractMakesNoCall() {
	svc := s.contractService(nil)

	_, err := svc.SignContract(s.ctx, models.SignRequest{InterviewID: "int-1", Token: "tok-1"})

	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestSignContract_SignatureFailure() {
	svc := s.contractService([]byte("%PDF"))
	s.mockProvider.EXPECT().AddContract(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(json.RawMessage(`{"additionalInformation":{"contractId":"c"}}`), nil)
	s.mockProvider.EXPECT().AttachSignature(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, &provider.TransportError{Method: http.MethodPost, StatusCode: 500})

	_, err := svc.SignContract(s.ctx, models.SignRequest{InterviewID: "int-1", Token: "tok-1"})

	s.Equal("HTTP Post Error: Request failed with code 500", err.Error())
	s.True(dErrors.HasCode(err, dErrors.CodeUpstream))
}
