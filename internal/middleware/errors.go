package middleware

import (
	"net/http"

	"github.com/go-chi/render"
)

// errorBody matches the API's error envelope so rejections from middleware
// look the same to clients as rejections from handlers.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func reject(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, errorBody{Error: errorDetail{Code: code, Message: message}})
}
