package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Entry series
	r.HandleFunc("/api/entry", deps.EntryHandler.CreateEntry).Methods("POST")
	r.HandleFunc("/api/entry", deps.EntryHandler.ListEntries).Methods("GET")
	r.HandleFunc("/api/entry/{entryId}", deps.EntryHandler.GetEntry).Methods("GET")
	r.HandleFunc("/api/entry/{entryId}", deps.EntryHandler.UpdateEntry).Methods("PUT")
	r.HandleFunc("/api/entry/{entryId}", deps.EntryHandler.DeleteEntry).Methods("DELETE")

	// Occurrences
	r.HandleFunc("/api/occurrence", deps.OccurrenceHandler.GetOccurrences).
		Queries("from_date", "{from_date}", "to_date", "{to_date}").Methods("GET")

	// Starting balance
	r.HandleFunc("/api/balance", deps.BalanceHandler.GetBalance).Methods("GET")
	r.HandleFunc("/api/balance", deps.BalanceHandler.SetBalance).Methods("PUT")

	// Projection
	r.HandleFunc("/api/projection", deps.ProjectionHandler.GetProjection).
		Queries("date", "{date}").Methods("GET")

	// User management
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
}
