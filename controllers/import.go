package controllers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"student-scores/apperr"
	"student-scores/importer"
	"student-scores/models"
	"student-scores/utils"
)

type ImportController struct{}

// ImportStudents runs a bulk import. Per-record errors are only listed when
// the request sets verbose=true.
func (ic ImportController) ImportStudents(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ImportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithAppError(w, r, apperr.Validationf("Invalid request body"))
			return
		}
		verbose, _ := strconv.ParseBool(r.URL.Query().Get("verbose"))

		res, err := importer.NewPipeline(db).Run(r.Context(), req, verbose)
		if err != nil {
			utils.RespondWithAppError(w, r, err)
			return
		}
		utils.ResponseJSON(w, res)
	}
}
