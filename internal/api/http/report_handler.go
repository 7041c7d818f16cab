package http

import (
	"net/http"

	"campground-backend/internal/domain"
	"campground-backend/internal/service"

	"github.com/gorilla/mux"
)

type ReportHandler struct {
	reportSvc service.ReportingService
	tariffSvc service.TariffService
}

func NewReportHandler(reportSvc service.ReportingService, tariffSvc service.TariffService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc, tariffSvc: tariffSvc}
}

func (h *ReportHandler) CashRegister(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]

	report, err := h.reportSvc.CashRegister(r.Context(), date)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) MarkReceiptIssued(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.reportSvc.MarkReceiptIssued(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (h *ReportHandler) Debtors(w http.ResponseWriter, r *http.Request) {
	debtors, err := h.reportSvc.Debtors(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"debtors": debtors})
}

func (h *ReportHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportSvc.Occupancy(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

type setTariffRequest struct {
	Category      domain.TariffCategory `json:"category"`
	AmountCents   int64                 `json:"amount_cents"`
	EffectiveFrom string                `json:"effective_from"`
}

func (h *ReportHandler) SetTariff(w http.ResponseWriter, r *http.Request) {
	var req setTariffRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	tariff, err := h.tariffSvc.SetTariff(r.Context(), req.Category, req.AmountCents, req.EffectiveFrom)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, tariff)
}

func (h *ReportHandler) TariffHistory(w http.ResponseWriter, r *http.Request) {
	category := domain.TariffCategory(mux.Vars(r)["category"])

	history, err := h.tariffSvc.History(r.Context(), category)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"tariffs": history})
}

func (h *ReportHandler) CurrentRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.tariffSvc.CurrentRates(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"rates": rates})
}
