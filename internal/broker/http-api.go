package broker

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

func registerApiRoutes(subrouter *mux.Router, getStatus func() Status) {
	subrouter.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(getStatus())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}).Methods(http.MethodGet)
}
