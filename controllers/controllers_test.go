package controllers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-scores/configstore"
	"student-scores/internal/testutil"
	"student-scores/models"
	"student-scores/utils"
)

type fixture struct {
	db      *sql.DB
	configs *configstore.FileStore
	router  http.Handler
}

func newFixture(t *testing.T, secret string) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	configs := configstore.NewFileStore(filepath.Join(t.TempDir(), "thresholds.yaml"))
	return &fixture{db: db, configs: configs, router: NewRouter(db, configs, secret)}
}

func (f *fixture) do(t *testing.T, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	f := newFixture(t, "")
	rec := f.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestGetStudents(t *testing.T) {
	f := newFixture(t, "")
	testutil.Exec(t, f.db, `INSERT INTO prior_performance (identifier, subject, score) VALUES ('006547', 'math', 72)`)

	rec := f.do(t, http.MethodGet, "/students?subject=math", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var records []models.StudentRecord
	decode(t, rec, &records)
	require.Len(t, records, 1)
	assert.Equal(t, "006547", records[0].Identifier)
	assert.Equal(t, 72.0, *records[0].PriorScore)
	assert.Equal(t, "Meets", *records[0].PriorLevel)
	assert.Nil(t, records[0].FallScore)
	assert.Nil(t, records[0].SpringScore)
}

func TestGetStudentsEmpty(t *testing.T) {
	f := newFixture(t, "")
	rec := f.do(t, http.MethodGet, "/students", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetStudentsWithBrokenConfig(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, os.WriteFile(f.configs.Path, []byte("thresholds: [broken"), 0o644))
	testutil.Exec(t, f.db, `INSERT INTO fall_performance (identifier, subject, score) VALUES ('1', 'math', 88)`)

	rec := f.do(t, http.MethodGet, "/students", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []models.StudentRecord
	decode(t, rec, &records)
	require.Len(t, records, 1)
	assert.Equal(t, 88.0, *records[0].FallScore)
	assert.Nil(t, records[0].FallLevel)

	rec = f.do(t, http.MethodGet, "/config", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body models.Error
	decode(t, rec, &body)
	assert.Equal(t, "internal failure", body.Message)
}

func TestGetStudent(t *testing.T) {
	f := newFixture(t, "")
	testutil.Exec(t, f.db, `INSERT INTO spring_matrix (identifier, first_name, last_name) VALUES ('006547', 'Itzhak', 'Aguilar')`)

	rec := f.do(t, http.MethodGet, "/students/6547", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var record models.StudentRecord
	decode(t, rec, &record)
	assert.Equal(t, "006547", record.Identifier)

	rec = f.do(t, http.MethodGet, "/students/404", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body models.Error
	decode(t, rec, &body)
	assert.False(t, body.Success)
	assert.Equal(t, "not_found", body.Kind)
}

func TestPatchStudent(t *testing.T) {
	f := newFixture(t, "")
	testutil.Exec(t, f.db, `INSERT INTO spring_matrix (identifier, first_name, last_name) VALUES ('006547', 'Itzhak', 'Aguilar')`)

	rec := f.do(t, http.MethodPatch, "/students", `{"identifier":"6547","fallScore":91}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{
		"success": true,
		"message": "Scores updated",
		"identifier": "006547",
		"updated": {"prior": false, "fall": true, "spring": false}
	}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/students/006547", "", nil)
	var record models.StudentRecord
	decode(t, rec, &record)
	assert.Equal(t, 91.0, *record.FallScore)
	assert.Equal(t, "Masters", *record.FallLevel)
}

func TestPatchStudentRejected(t *testing.T) {
	f := newFixture(t, "")

	rec := f.do(t, http.MethodPatch, "/students", `{"identifier":"006547","staarScore":150}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body models.Error
	decode(t, rec, &body)
	assert.Equal(t, "validation", body.Kind)
	assert.Equal(t, "staarScore must be between 0 and 100, got 150", body.Message)

	rec = f.do(t, http.MethodPatch, "/students", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteStudent(t *testing.T) {
	f := newFixture(t, "")
	testutil.Exec(t, f.db,
		`INSERT INTO prior_performance (identifier, score) VALUES ('006547', 72)`,
		`INSERT INTO fall_performance (identifier, score) VALUES ('006547', 80)`,
		`INSERT INTO spring_matrix (identifier, spring_score) VALUES ('006547', 85)`,
	)

	rec := f.do(t, http.MethodDelete, "/students", `{"identifier":"006547"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/students", "", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = f.do(t, http.MethodDelete, "/students", `{"identifier":""}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportStudents(t *testing.T) {
	f := newFixture(t, "")
	body := `{"subject":"math","students":["006547 Itzhak Aguilar 86","not a valid line","9999 42"]}`

	rec := f.do(t, http.MethodPost, "/students/import?verbose=true", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res models.ImportResult
	decode(t, rec, &res)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, res.Errors, 1)

	rec = f.do(t, http.MethodPost, "/students/import", `{"subject":"art","students":[]}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfigRoundTrip(t *testing.T) {
	f := newFixture(t, "")

	rec := f.do(t, http.MethodGet, "/config", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cfg models.Config
	decode(t, rec, &cfg)
	assert.Contains(t, cfg.Thresholds, "math")

	rec = f.do(t, http.MethodPut, "/config", `{"thresholds":{}}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	overlapping := `{
		"labels": {"xAxis": "STAAR", "yAxis": "Checkpoint"},
		"thresholds": {"math": {
			"previous": [{"label": "Low", "min": 0, "max": 60}, {"label": "High", "min": 50, "max": 100}],
			"current": [{"label": "All", "min": 0, "max": 100}]
		}}
	}`
	rec = f.do(t, http.MethodPut, "/config", overlapping, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var saved models.ConfigSaveResponse
	decode(t, rec, &saved)
	assert.True(t, saved.Success)
	require.NotEmpty(t, saved.Warnings)
	assert.Contains(t, saved.Warnings[0], "overlaps")

	rec = f.do(t, http.MethodGet, "/config", "", nil)
	decode(t, rec, &cfg)
	assert.Equal(t, "STAAR", cfg.Labels.XAxis)
	assert.Len(t, cfg.Thresholds["math"].Previous, 2)
}

func TestTokenVerifyMiddleware(t *testing.T) {
	f := newFixture(t, "s3cret")
	patch := `{"identifier":"1","fallScore":50}`

	rec := f.do(t, http.MethodPatch, "/students", patch, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := utils.GenerateToken("test", "s3cret", time.Minute)
	require.NoError(t, err)
	rec = f.do(t, http.MethodPatch, "/students", patch, map[string]string{"Authorization": "Bearer " + tok})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/students", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "reads stay open")
}
