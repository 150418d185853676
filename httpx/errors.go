package httpx

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/survey-tally/log"
)

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Will log a debug message, and send an HTTP response with status 404 and default text
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// Will log an error code and message at the given level,
// and send a JSON response {"detail": msg} with the given status
func LogDetail(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string, msg string, args ...any) {
	detail := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", detail)
	render.Status(r, status)
	render.JSON(w, r, map[string]any{"detail": detail})
}

// Will log an error code at DEBUG level, and send a JSON response
// with status 400 holding per-field messages under key
func LogInvalid(w http.ResponseWriter, r *http.Request, code string, key string, errs any) {
	log.WithFields(log.Fields{"errors": errs}).Debug(code)
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, map[string]any{key: errs})
}
