package handlers

import (
	"encoding/json"
	"net/http"
	"roommate_service/errors"
)

func jsonResponse(object interface{}, w http.ResponseWriter) {
	resp, err := json.Marshal(object)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(resp)
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	jsonResponse(errors.ValidationError{Message: message}, w)
}
