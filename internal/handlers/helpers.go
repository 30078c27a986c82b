package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fleet-backend/internal/apperrors"
	"fleet-backend/internal/middleware"
	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/internal/timeutil"

	"github.com/gorilla/mux"
)

// pathID reads a positive integer path variable.
func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		return 0, apperrors.FieldValidation(map[string]string{name: "must be a positive integer"})
	}
	return id, nil
}

// queryInt reads an optional positive integer query parameter.
func queryInt(r *http.Request, name string) (*int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return nil, apperrors.FieldValidation(map[string]string{name: "must be a positive integer"})
	}
	return &n, nil
}

// dateRange reads ?from=&to= as whole days in the business timezone.
func dateRange(r *http.Request) (from, to *time.Time, err error) {
	fields := map[string]string{}
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, perr := timeutil.ParseDate(v)
		if perr != nil {
			fields["from"] = "must be a valid date"
		} else {
			start := timeutil.StartOfDay(t)
			from = &start
		}
	}
	if v := q.Get("to"); v != "" {
		t, perr := timeutil.ParseDate(v)
		if perr != nil {
			fields["to"] = "must be a valid date"
		} else {
			end := timeutil.EndOfDay(t)
			to = &end
		}
	}
	if len(fields) > 0 {
		return nil, nil, apperrors.FieldValidation(fields)
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, apperrors.FieldValidation(map[string]string{"to": "must not be before from"})
	}
	return from, to, nil
}

// auditor writes action logs for mutating requests. A nil service disables it.
type auditor struct {
	svc *services.AuditService
}

func (a auditor) record(r *http.Request, action, target string, targetID int, format string, args ...any) {
	if a.svc == nil {
		return
	}
	entry := &models.ActionLog{
		ActionType:  action,
		TargetType:  target,
		Description: fmt.Sprintf(format, args...),
		IPAddress:   middleware.ClientIP(r),
	}
	if targetID > 0 {
		entry.TargetID = &targetID
	}
	if uid, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		entry.UserID = &uid
	}
	a.svc.Record(r.Context(), entry)
}

// attachment writes a downloadable file.
func attachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
