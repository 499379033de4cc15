package server

import (
	"encoding/json"
	"net/http"
	"strings"
)

// maxBodyBytes caps scenario request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx JSON reply. Code is a stable
// machine-readable tag such as "invalid_scenario".
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON sends data as the JSON body with the given status.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode is WriteError plus a Code tag clients can switch on.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// RequireMethod reports whether r uses one of methods. Otherwise it answers
// 405 with an Allow header listing them.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// DecodeJSON fills v from the request body. An empty, oversized or
// malformed body is answered with 400 and false is returned.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil || r.Body == http.NoBody {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

// PathSegment returns the single path segment that follows prefix, so
// /api/portfolio/42 yields "42" for prefix /api/portfolio/. ok is false when
// the path does not start with prefix or has further segments after it.
func PathSegment(r *http.Request, prefix string) (segment string, ok bool) {
	rest, found := strings.CutPrefix(r.URL.Path, prefix)
	if !found || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
