package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"student-scores/apperr"
	"student-scores/configstore"
	"student-scores/models"
	"student-scores/scoring"
	"student-scores/utils"
)

type ConfigController struct{}

func (cc ConfigController) GetConfig(configs configstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := configs.Load(r.Context())
		if err != nil {
			utils.RespondWithAppError(w, r, apperr.Wrap(err, "load config"))
			return
		}
		utils.ResponseJSON(w, cfg)
	}
}

// SaveConfig replaces the whole configuration. Overlapping or gapped
// threshold sets are saved and reported back as warnings.
func (cc ConfigController) SaveConfig(configs configstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil || !gjson.ValidBytes(body) {
			utils.RespondWithAppError(w, r, apperr.Validationf("Invalid request body"))
			return
		}
		if !gjson.GetBytes(body, "labels").Exists() || !gjson.GetBytes(body, "thresholds").Exists() {
			utils.RespondWithAppError(w, r, apperr.Validationf("configuration must contain labels and thresholds"))
			return
		}

		var cfg models.Config
		if err := json.Unmarshal(body, &cfg); err != nil {
			utils.RespondWithAppError(w, r, apperr.Validationf("Invalid request body"))
			return
		}
		if err := configs.Save(r.Context(), &cfg); err != nil {
			utils.RespondWithAppError(w, r, err)
			return
		}

		warnings := scoring.Lint(&cfg)
		if warnings == nil {
			warnings = []string{}
		}
		utils.ResponseJSON(w, models.ConfigSaveResponse{
			Response: models.Response{Success: true, Message: "Configuration saved"},
			Warnings: warnings,
		})
	}
}
