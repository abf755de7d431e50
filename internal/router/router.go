package router

import (
	"net/http"

	"licitia/internal/controller"
)

func NewRouter(c *controller.Controller) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", c.Ping)

	mux.HandleFunc("GET /api/tenders", c.GetTenders)
	mux.HandleFunc("POST /api/tenders", c.NewTender)
	mux.HandleFunc("GET /api/tenders/{tenderId}", c.GetTender)

	mux.HandleFunc("GET /api/experiences", c.GetExperiences)
	mux.HandleFunc("GET /api/experiences/{experienceId}", c.GetExperience)
	mux.HandleFunc("POST /api/experiences", c.NewExperience)
	mux.HandleFunc("POST /api/experiences/import", c.ImportExperiences)
	mux.HandleFunc("DELETE /api/experiences/{experienceId}", c.DeleteExperience)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("page not found"))
	})

	cors := http.NewServeMux()
	cors.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Accept", "*/*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
		} else {
			mux.ServeHTTP(w, r)
		}
	})

	return cors
}
