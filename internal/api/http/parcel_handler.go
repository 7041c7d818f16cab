package http

import (
	"net/http"

	"campground-backend/internal/service"

	"github.com/gorilla/mux"
)

type ParcelHandler struct {
	parcelSvc service.ParcelService
}

func NewParcelHandler(parcelSvc service.ParcelService) *ParcelHandler {
	return &ParcelHandler{parcelSvc: parcelSvc}
}

type createParcelRequest struct {
	Name      string `json:"name"`
	PosX      int32  `json:"pos_x"`
	PosY      int32  `json:"pos_y"`
	IsBedUnit bool   `json:"is_bed_unit"`
}

func (h *ParcelHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createParcelRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	parcel, err := h.parcelSvc.CreateParcel(r.Context(), req.Name, req.PosX, req.PosY, req.IsBedUnit)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, parcel)
}

func (h *ParcelHandler) List(w http.ResponseWriter, r *http.Request) {
	parcels, err := h.parcelSvc.ListParcels(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"parcels": parcels})
}

type parcelNamesRequest struct {
	Parcels []string `json:"parcels"`
}

func (h *ParcelHandler) Select(w http.ResponseWriter, r *http.Request) {
	stayID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req parcelNamesRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	selections, err := h.parcelSvc.SelectParcels(r.Context(), stayID, req.Parcels)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"selections": selections})
}

func (h *ParcelHandler) Assign(w http.ResponseWriter, r *http.Request) {
	stayID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req parcelNamesRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	stay, err := h.parcelSvc.AssignParcels(r.Context(), stayID, req.Parcels)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stayResponse{Stay: stay})
}

func (h *ParcelHandler) Release(w http.ResponseWriter, r *http.Request) {
	stayID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	name := mux.Vars(r)["name"]

	if err := h.parcelSvc.ReleaseParcel(r.Context(), stayID, name); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

type moveRequest struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	OccupantIDs []int64 `json:"occupant_ids,omitempty"`
}

func (h *ParcelHandler) Move(w http.ResponseWriter, r *http.Request) {
	stayID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req moveRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.parcelSvc.MoveOccupancy(r.Context(), stayID, req.From, req.To, req.OccupantIDs); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
