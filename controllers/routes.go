package controllers

import (
	"database/sql"

	"github.com/gorilla/mux"

	"student-scores/configstore"
)

// NewRouter registers every route of the service.
func NewRouter(db *sql.DB, configs configstore.Store, secret string) *mux.Router {
	controller := Controller{Secret: secret}
	studentController := StudentController{}
	importController := ImportController{}
	configController := ConfigController{}

	router := mux.NewRouter()
	router.Use(RequestLogger)

	router.HandleFunc("/", controller.Health()).Methods("GET")

	router.HandleFunc("/students", studentController.GetStudents(db, configs)).Methods("GET")
	router.HandleFunc("/students", controller.TokenVerifyMiddleware(studentController.PatchStudent(db))).Methods("PATCH")
	router.HandleFunc("/students", controller.TokenVerifyMiddleware(studentController.DeleteStudent(db))).Methods("DELETE")
	router.HandleFunc("/students/import", controller.TokenVerifyMiddleware(importController.ImportStudents(db))).Methods("POST")
	router.HandleFunc("/students/{identifier}", studentController.GetStudent(db, configs)).Methods("GET")

	router.HandleFunc("/config", configController.GetConfig(configs)).Methods("GET")
	router.HandleFunc("/config", controller.TokenVerifyMiddleware(configController.SaveConfig(configs))).Methods("PUT")

	return router
}
