package controllers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"student-scores/apperr"
	"student-scores/configstore"
	"student-scores/models"
	"student-scores/reconcile"
	"student-scores/repository"
	"student-scores/utils"
)

type StudentController struct{}

// loadConfig returns nil when the thresholds cannot be read, so the view
// still serves scores with null levels.
func loadConfig(r *http.Request, configs configstore.Store) *models.Config {
	cfg, err := configs.Load(r.Context())
	if err != nil {
		log.WithError(err).Warn("threshold config unavailable, levels left null")
		return nil
	}
	return cfg
}

func (sc StudentController) GetStudents(db *sql.DB, configs configstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := loadConfig(r, configs)
		records, err := reconcile.BuildView(r.Context(), repository.NewReader(db), cfg, r.URL.Query().Get("subject"))
		if err != nil {
			utils.RespondWithAppError(w, r, err)
			return
		}
		utils.ResponseJSON(w, records)
	}
}

func (sc StudentController) GetStudent(db *sql.DB, configs configstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := loadConfig(r, configs)
		id := mux.Vars(r)["identifier"]
		record, err := reconcile.FindRecord(r.Context(), repository.NewReader(db), cfg, r.URL.Query().Get("subject"), id)
		if err != nil {
			utils.RespondWithAppError(w, r, err)
			return
		}
		utils.ResponseJSON(w, record)
	}
}

func (sc StudentController) PatchStudent(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.PatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithAppError(w, r, apperr.Validationf("Invalid request body"))
			return
		}

		res, err := reconcile.NewPatcher(db).Apply(r.Context(), req)
		if err != nil {
			utils.RespondWithAppError(w, r, err)
			return
		}
		utils.ResponseJSON(w, models.PatchResponse{
			Response:    models.Response{Success: true, Message: "Scores updated"},
			PatchResult: *res,
		})
	}
}

func (sc StudentController) DeleteStudent(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.DeleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithAppError(w, r, apperr.Validationf("Invalid request body"))
			return
		}

		id, err := reconcile.Delete(r.Context(), db, req.Identifier)
		if err != nil {
			utils.RespondWithAppError(w, r, err)
			return
		}
		utils.ResponseJSON(w, models.Response{Success: true, Message: "Student " + id + " deleted"})
	}
}
