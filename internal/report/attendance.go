package report

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/munscan/internal/database"
	"github.com/nao1215/munscan/internal/model"
	"github.com/nao1215/munscan/internal/roster"
)

// Checkin is one present delegate.
type Checkin struct {
	DelegateID model.DelegateID `json:"delegate_id"`
	Name       string           `json:"name"`
	Country    string           `json:"country"`
	Committee  string           `json:"committee"`
	ScannedBy  string           `json:"scanned_by"`
	Timestamp  time.Time        `json:"timestamp"`
}

// Absentee is a roster delegate without a check-in.
type Absentee struct {
	DelegateID    model.DelegateID `json:"delegate_id"`
	Name          string           `json:"name"`
	Country       string           `json:"country"`
	Committee     string           `json:"committee"`
	FormsComplete bool             `json:"forms_complete"`
}

// CommitteeAttendance counts one committee.
type CommitteeAttendance struct {
	Name    string `json:"name"`
	Total   int    `json:"total"`
	Present int    `json:"present"`
}

// Attendance is the attendance report.
type Attendance struct {
	GeneratedAt    time.Time             `json:"generated_at"`
	TotalDelegates int                   `json:"total_delegates"`
	Present        int                   `json:"present"`
	Absent         int                   `json:"absent"`
	AttendanceRate float64               `json:"attendance_rate"`
	PendingForms   int                   `json:"pending_forms"`
	Committees     []CommitteeAttendance `json:"committees"`
	ScannedBy      map[string]int        `json:"scanned_by"`
	Checkins       []Checkin             `json:"checkins"`
	Absentees      []Absentee            `json:"absentees"`

	// Unknown lists checked-in identifiers the roster no longer knows.
	Unknown []model.DelegateID `json:"unknown,omitempty"`
}

var (
	committeeCase = cases.Upper(language.English)
	countryCase   = cases.Title(language.English)
)

// Build joins the roster with the attendance summary. Committee names are
// grouped case-insensitively and shown upper-cased, country names are
// title-cased.
func Build(r *roster.Roster, s database.Summary, now time.Time) *Attendance {
	a := &Attendance{
		GeneratedAt:    now,
		TotalDelegates: r.Len(),
		PendingForms:   len(r.PendingForms()),
		ScannedBy:      make(map[string]int, len(s.ScannedBy)),
		Checkins:       make([]Checkin, 0, len(s.Records)),
		Absentees:      make([]Absentee, 0),
	}
	for k, v := range s.ScannedBy {
		a.ScannedBy[k] = v
	}

	present := make(map[model.DelegateID]bool, len(s.Records))
	for _, rec := range s.Records {
		d, err := r.Get(rec.DelegateID)
		if err != nil {
			a.Unknown = append(a.Unknown, rec.DelegateID)
			continue
		}
		present[d.ID] = true
		a.Checkins = append(a.Checkins, Checkin{
			DelegateID: d.ID,
			Name:       d.Name,
			Country:    countryCase.String(d.Country),
			Committee:  committeeCase.String(d.Committee),
			ScannedBy:  rec.ScannedBy,
			Timestamp:  rec.Timestamp,
		})
	}

	committees := make(map[string]*CommitteeAttendance)
	for _, d := range r.All() {
		name := committeeCase.String(strings.TrimSpace(d.Committee))
		if name == "" {
			name = "-"
		}
		c, ok := committees[name]
		if !ok {
			c = &CommitteeAttendance{Name: name}
			committees[name] = c
		}
		c.Total++
		if present[d.ID] {
			c.Present++
			continue
		}
		a.Absentees = append(a.Absentees, Absentee{
			DelegateID:    d.ID,
			Name:          d.Name,
			Country:       countryCase.String(d.Country),
			Committee:     name,
			FormsComplete: d.FormsComplete(),
		})
	}
	for _, c := range committees {
		a.Committees = append(a.Committees, *c)
	}
	sort.Slice(a.Committees, func(i, j int) bool { return a.Committees[i].Name < a.Committees[j].Name })

	a.Present = len(a.Checkins)
	a.Absent = a.TotalDelegates - a.Present
	if a.TotalDelegates > 0 {
		a.AttendanceRate = float64(a.Present) / float64(a.TotalDelegates) * 100
	}
	return a
}

// Stations returns the station names ordered by check-in count, then name.
func (a *Attendance) Stations() []string {
	out := make([]string, 0, len(a.ScannedBy))
	for k := range a.ScannedBy {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if a.ScannedBy[out[i]] != a.ScannedBy[out[j]] {
			return a.ScannedBy[out[i]] > a.ScannedBy[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}
