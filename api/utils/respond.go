package utils

import (
	"encoding/json"
	"log"
	"net/http"

	"DepreciationRecon/api/constants"
)

// RespondWithError writes {"success": false, "error": msg}.
func RespondWithError(w http.ResponseWriter, status int, errMsg string) {
	log.Println("[ERROR]", errMsg)
	w.Header().Set(constants.ContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   errMsg,
	})
}

// RespondWithPayload writes {"success": true} merged with the payload fields.
func RespondWithPayload(w http.ResponseWriter, status int, payload map[string]interface{}) {
	resp := map[string]interface{}{"success": true}
	for k, v := range payload {
		resp[k] = v
	}
	w.Header().Set(constants.ContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// RespondWithFile sends a download with the given file name.
func RespondWithFile(w http.ResponseWriter, contentType, fileName string, data []byte) {
	w.Header().Set(constants.ContentType, contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
