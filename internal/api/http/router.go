package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires every endpoint. Login is the only public endpoint;
// everything else sits behind the JWT middleware, and tariff management
// is further gated to admins.
func NewRouter(
	authMW *AuthMiddleware,
	authHandler *AuthHandler,
	stayHandler *StayHandler,
	parcelHandler *ParcelHandler,
	reportHandler *ReportHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware)

	router.HandleFunc("/api/v1/auth/login", authHandler.Login).Methods("POST")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMW.Handler)

	// Stay lifecycle
	api.HandleFunc("/stays", stayHandler.CheckIn).Methods("POST")
	api.HandleFunc("/stays/extend-group", stayHandler.ExtendGroup).Methods("POST")
	api.HandleFunc("/stays/fuse", stayHandler.Fuse).Methods("POST")
	api.HandleFunc("/stays/{id}", stayHandler.Get).Methods("GET")
	api.HandleFunc("/stays/{id}/liquidate", stayHandler.Liquidate).Methods("POST")
	api.HandleFunc("/stays/{id}/extend", stayHandler.Extend).Methods("POST")
	api.HandleFunc("/stays/{id}/checkout", stayHandler.Checkout).Methods("POST")
	api.HandleFunc("/stays/{id}/payments", stayHandler.RecordPayment).Methods("POST")
	api.HandleFunc("/stays/{id}/extra-charges", stayHandler.AddExtraCharge).Methods("POST")
	api.HandleFunc("/stays/{id}/statement", stayHandler.Statement).Methods("GET")
	api.HandleFunc("/stays/{id}/normalize-responsible", stayHandler.NormalizeResponsible).Methods("POST")
	api.HandleFunc("/groups/{phone}/statement", stayHandler.GroupStatement).Methods("GET")
	api.HandleFunc("/occupants/{id}/reassign", stayHandler.ReassignOccupant).Methods("POST")

	// Parcels
	api.HandleFunc("/parcels", parcelHandler.List).Methods("GET")
	api.HandleFunc("/parcels", parcelHandler.Create).Methods("POST")
	api.HandleFunc("/stays/{id}/parcel-selections", parcelHandler.Select).Methods("POST")
	api.HandleFunc("/stays/{id}/parcels", parcelHandler.Assign).Methods("POST")
	api.HandleFunc("/stays/{id}/parcels/{name}", parcelHandler.Release).Methods("DELETE")
	api.HandleFunc("/stays/{id}/parcels/move", parcelHandler.Move).Methods("POST")

	// Reports
	api.HandleFunc("/reports/cash-register/{date}", reportHandler.CashRegister).Methods("GET")
	api.HandleFunc("/payments/{id}/receipt", reportHandler.MarkReceiptIssued).Methods("POST")
	api.HandleFunc("/reports/debtors", reportHandler.Debtors).Methods("GET")
	api.HandleFunc("/reports/occupancy", reportHandler.Occupancy).Methods("GET")

	// Tariffs
	api.HandleFunc("/tariffs", reportHandler.CurrentRates).Methods("GET")
	api.HandleFunc("/tariffs", authMW.RequireAdmin(reportHandler.SetTariff)).Methods("POST")
	api.HandleFunc("/tariffs/{category}/history", reportHandler.TariffHistory).Methods("GET")

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	return router
}
