package middleware

import "net/http"

func writeError(w http.ResponseWriter, code int, msg string) {
	http.Error(w, msg, code)
}
