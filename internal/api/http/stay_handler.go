package http

import (
	"net/http"
	"strconv"

	"campground-backend/internal/domain"
	"campground-backend/internal/service"

	"github.com/gorilla/mux"
)

type StayHandler struct {
	staySvc       service.StayService
	fusionSvc     service.FusionService
	settlementSvc service.SettlementService
}

func NewStayHandler(staySvc service.StayService, fusionSvc service.FusionService, settlementSvc service.SettlementService) *StayHandler {
	return &StayHandler{
		staySvc:       staySvc,
		fusionSvc:     fusionSvc,
		settlementSvc: settlementSvc,
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, service.ErrInvalidInput
	}
	return id, nil
}

type stayResponse struct {
	Stay      *domain.Stay      `json:"stay"`
	Occupant  *domain.Occupant  `json:"occupant,omitempty"`
	Occupants []domain.Occupant `json:"occupants,omitempty"`
}

func (h *StayHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req service.CreateStayRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	stay, occupant, err := h.staySvc.CreateOrJoinStay(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, stayResponse{Stay: stay, Occupant: occupant})
}

func (h *StayHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	stay, occupants, err := h.staySvc.GetStay(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stayResponse{Stay: stay, Occupants: occupants})
}

type liquidateResponse struct {
	Stay         *domain.Stay `json:"stay"`
	BalanceCents int64        `json:"balance_cents"`
}

func (h *StayHandler) Liquidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req service.LiquidateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	req.StayID = id

	stay, balance, err := h.staySvc.Liquidate(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, liquidateResponse{Stay: stay, BalanceCents: balance})
}

type extendRequest struct {
	NewExitDate string                `json:"new_exit_date"`
	GroupPhone  string                `json:"group_phone,omitempty"`
	Payment     *service.PaymentInput `json:"payment,omitempty"`
}

func (h *StayHandler) Extend(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req extendRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	stay, err := h.staySvc.Extend(r.Context(), id, req.NewExitDate, req.Payment)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stayResponse{Stay: stay})
}

func (h *StayHandler) ExtendGroup(w http.ResponseWriter, r *http.Request) {
	var req extendRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	stays, err := h.staySvc.ExtendGroup(r.Context(), req.GroupPhone, req.NewExitDate, req.Payment)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"stays": stays})
}

type checkoutResponse struct {
	Stay          *domain.Stay `json:"stay"`
	FinalDueCents int64        `json:"final_due_cents"`
}

func (h *StayHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req service.CheckoutRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	req.StayID = id

	stay, finalDue, err := h.staySvc.Checkout(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, checkoutResponse{Stay: stay, FinalDueCents: finalDue})
}

func (h *StayHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req service.PaymentInput
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	payment, err := h.staySvc.RecordPayment(r.Context(), id, req.AmountCents, req.Method)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, payment)
}

type extraChargeRequest struct {
	Kind     domain.TariffCategory `json:"kind"`
	Quantity int32                 `json:"quantity"`
	Days     int32                 `json:"days"`
}

func (h *StayHandler) AddExtraCharge(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req extraChargeRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	charge, err := h.staySvc.AddExtraCharge(r.Context(), id, req.Kind, req.Quantity, req.Days)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, charge)
}

func (h *StayHandler) Statement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	stmt, err := h.settlementSvc.StayStatement(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stmt)
}

func (h *StayHandler) GroupStatement(w http.ResponseWriter, r *http.Request) {
	phone := mux.Vars(r)["phone"]

	stmt, err := h.settlementSvc.GroupStatement(r.Context(), phone)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stmt)
}

type fuseRequest struct {
	SourceID int64 `json:"source_id"`
	TargetID int64 `json:"target_id"`
}

func (h *StayHandler) Fuse(w http.ResponseWriter, r *http.Request) {
	var req fuseRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	stay, err := h.fusionSvc.FuseStays(r.Context(), req.SourceID, req.TargetID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stayResponse{Stay: stay})
}

type reassignRequest struct {
	NewStayID int64 `json:"new_stay_id"`
}

func (h *StayHandler) ReassignOccupant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req reassignRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	occupant, err := h.fusionSvc.ReassignOccupant(r.Context(), id, req.NewStayID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, occupant)
}

func (h *StayHandler) NormalizeResponsible(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.fusionSvc.NormalizeResponsible(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
