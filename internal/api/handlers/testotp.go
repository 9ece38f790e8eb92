package handlers

import (
	"context"
	"net/http"

	"github.com/baechuer/otp-dashboard/internal/domain"
)

type OTPSender interface {
	Send(ctx context.Context, req domain.SendOTPRequest) (*domain.SendOTPResponse, error)
	Verify(ctx context.Context, req domain.VerifyOTPRequest) (*domain.VerifyOTPResponse, error)
}

// TestOTPHandler backs the "send a test code" screen.
type TestOTPHandler struct {
	otp OTPSender
}

func NewTestOTPHandler(otp OTPSender) *TestOTPHandler {
	return &TestOTPHandler{otp: otp}
}

func (h *TestOTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.SendOTPRequest
	if !decodeValid(w, r, &req) {
		return
	}

	resp, err := h.otp.Send(r.Context(), req)
	if err != nil {
		handleFailure(w, r, err, "Could not send the test code.")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *TestOTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if !decodeValid(w, r, &req) {
		return
	}

	resp, err := h.otp.Verify(r.Context(), req)
	if err != nil {
		handleFailure(w, r, err, "Could not verify the code.")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
