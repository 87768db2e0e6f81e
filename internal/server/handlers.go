package server

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nao1215/munscan/internal/model"
	"github.com/nao1215/munscan/internal/roster"
)

type scanPage struct {
	Delegate model.Delegate
	Message  string
	Record   *model.AttendanceRecord
	// Repeat is set when Record existed before this request.
	Repeat bool
}

// Stats are the dashboard figures.
type Stats struct {
	TotalDelegates   int     `json:"total_delegates"`
	PresentDelegates int     `json:"present_delegates"`
	PendingForms     int     `json:"pending_forms"`
	AttendanceRate   float64 `json:"attendance_rate"`
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) scan(w http.ResponseWriter, r *http.Request) {
	d, ok := s.delegateFromPath(w, r)
	if !ok {
		return
	}

	page := scanPage{Delegate: d}
	if s.autoCheckIn {
		rec, created, err := s.store.MarkAttendance(r.Context(), d.ID, scannedBy(r))
		if err != nil {
			s.internalError(w, r, "failed to mark attendance", err)
			return
		}
		page.Record = &rec
		page.Repeat = !created
		if created {
			page.Message = "Checked in " + d.Name
		}
	} else {
		rec, found, err := s.store.Get(r.Context(), d.ID)
		if err != nil {
			s.internalError(w, r, "failed to get attendance", err)
			return
		}
		if found {
			page.Record = &rec
			page.Repeat = true
		} else {
			page.Message = d.Name + " is not checked in yet"
		}
	}

	s.render(w, r, "scan.html", page)
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	d, ok := s.delegateFromPath(w, r)
	if !ok {
		return
	}
	if _, _, err := s.store.MarkAttendance(r.Context(), d.ID, scannedBy(r)); err != nil {
		s.internalError(w, r, "failed to mark attendance", err)
		return
	}
	http.Redirect(w, r, scanURL(d.ID), http.StatusSeeOther)
}

func (s *Server) manualScan(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, "invalid form")
		return
	}
	id := model.DelegateID(strings.TrimSpace(r.PostForm.Get("delegate_id")))
	if id.IsEmpty() {
		writeText(w, http.StatusBadRequest, "delegate_id is required")
		return
	}
	if !s.roster.Has(id) {
		writeText(w, http.StatusNotFound, "Delegate "+id.String()+" not found.")
		return
	}
	http.Redirect(w, r, scanURL(id), http.StatusSeeOther)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.Summary(r.Context())
	if err != nil {
		s.internalError(w, r, "failed to summarize attendance", err)
		return
	}
	s.render(w, r, "dashboard.html", map[string]any{
		"Stats":   s.stats(summary.TotalScanned),
		"Summary": summary,
	})
}

func (s *Server) attendanceSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.Summary(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to summarize attendance", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to get attendance summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) stats(present int) Stats {
	st := Stats{
		TotalDelegates:   s.roster.Len(),
		PresentDelegates: present,
		PendingForms:     len(s.roster.PendingForms()),
	}
	if st.TotalDelegates > 0 {
		st.AttendanceRate = float64(present) / float64(st.TotalDelegates) * 100
	}
	return st
}

// delegateFromPath resolves the {id} URL parameter. It writes a 404 for an
// unknown delegate.
func (s *Server) delegateFromPath(w http.ResponseWriter, r *http.Request) (model.Delegate, bool) {
	raw := chi.URLParam(r, "id")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	id := model.DelegateID(strings.TrimSpace(raw))

	d, err := s.roster.Get(id)
	if errors.Is(err, roster.ErrDelegateNotFound) {
		writeText(w, http.StatusNotFound, "Delegate "+id.String()+" not found.")
		return model.Delegate{}, false
	}
	if err != nil {
		s.internalError(w, r, "failed to get delegate", err)
		return model.Delegate{}, false
	}
	return d, true
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.internalError(w, r, "failed to render "+name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.ErrorContext(r.Context(), msg,
		"request_id", requestIDFromContext(r.Context()),
		"error", err,
	)
	writeText(w, http.StatusInternalServerError, "Error occurred: "+msg)
}

// scannedBy names the station of a request: the station header, then a
// scanned_by form value, then DefaultScanner.
func scannedBy(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(stationHeader)); v != "" {
		return v
	}
	if r.Method == http.MethodPost {
		if v := strings.TrimSpace(r.FormValue("scanned_by")); v != "" {
			return v
		}
	}
	return DefaultScanner
}

func scanURL(id model.DelegateID) string {
	return "/scan/" + url.PathEscape(id.String())
}
