// Package roster loads the conference delegate list served by the lookup
// server.
package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/munscan/internal/model"
)

// entry is one delegate as written in a roster file. Form statuses are
// kept as strings so they can be validated with a useful error.
type entry struct {
	Name          string `json:"name" yaml:"name"`
	Country       string `json:"country" yaml:"country"`
	Committee     string `json:"committee" yaml:"committee"`
	Portfolio     string `json:"portfolio" yaml:"portfolio"`
	LiabilityForm string `json:"liability_form" yaml:"liability_form"`
	TransportForm string `json:"transport_form" yaml:"transport_form"`
}

// Roster is an immutable set of delegates keyed by identifier.
type Roster struct {
	delegates map[model.DelegateID]model.Delegate
}

// Load reads a roster file. Files ending in .yaml or .yml are parsed as
// YAML, everything else as JSON. Both formats are an object keyed by
// delegate identifier.
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path) //nolint:gosec // roster path is chosen by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	var raw map[string]entry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRoster, filepath.Base(path), err)
	}
	return fromEntries(raw)
}

// New builds a roster from delegates. Later duplicates replace earlier ones.
func New(delegates ...model.Delegate) *Roster {
	r := &Roster{delegates: make(map[model.DelegateID]model.Delegate, len(delegates))}
	for _, d := range delegates {
		r.delegates[d.ID] = d
	}
	return r
}

func fromEntries(raw map[string]entry) (*Roster, error) {
	r := &Roster{delegates: make(map[model.DelegateID]model.Delegate, len(raw))}
	for key, e := range raw {
		id := model.DelegateID(strings.TrimSpace(key))
		if id.IsEmpty() {
			return nil, fmt.Errorf("%w: empty delegate id", ErrInvalidRoster)
		}
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("%w: delegate %s has no name", ErrInvalidRoster, id)
		}
		liability, err := model.ParseFormStatus(e.LiabilityForm)
		if err != nil {
			return nil, fmt.Errorf("%w: delegate %s liability_form: %w", ErrInvalidRoster, id, err)
		}
		transport, err := model.ParseFormStatus(e.TransportForm)
		if err != nil {
			return nil, fmt.Errorf("%w: delegate %s transport_form: %w", ErrInvalidRoster, id, err)
		}
		r.delegates[id] = model.Delegate{
			ID:            id,
			Name:          e.Name,
			Country:       e.Country,
			Committee:     e.Committee,
			Portfolio:     e.Portfolio,
			LiabilityForm: liability,
			TransportForm: transport,
		}
	}
	return r, nil
}

// Len returns the number of delegates.
func (r *Roster) Len() int {
	return len(r.delegates)
}

// Get returns the delegate with the given identifier.
func (r *Roster) Get(id model.DelegateID) (model.Delegate, error) {
	d, ok := r.delegates[id]
	if !ok {
		return model.Delegate{}, fmt.Errorf("%w: %s", ErrDelegateNotFound, id)
	}
	return d, nil
}

// Has reports whether the roster knows id.
func (r *Roster) Has(id model.DelegateID) bool {
	_, ok := r.delegates[id]
	return ok
}

// All returns every delegate ordered by identifier.
func (r *Roster) All() []model.Delegate {
	return r.filter(func(model.Delegate) bool { return true })
}

// ByCommittee returns the delegates of a committee, matched case-insensitively.
func (r *Roster) ByCommittee(committee string) []model.Delegate {
	return r.filter(func(d model.Delegate) bool {
		return strings.EqualFold(d.Committee, committee)
	})
}

// ByCountry returns the delegates of a country, matched case-insensitively.
func (r *Roster) ByCountry(country string) []model.Delegate {
	return r.filter(func(d model.Delegate) bool {
		return strings.EqualFold(d.Country, country)
	})
}

// PendingForms returns the delegates with at least one form not submitted.
func (r *Roster) PendingForms() []model.Delegate {
	return r.filter(func(d model.Delegate) bool { return !d.FormsComplete() })
}

// FormsComplete returns the delegates with both forms submitted.
func (r *Roster) FormsComplete() []model.Delegate {
	return r.filter(model.Delegate.FormsComplete)
}

// Committees returns the distinct committee names in sorted order.
func (r *Roster) Committees() []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range r.delegates {
		if d.Committee == "" || seen[d.Committee] {
			continue
		}
		seen[d.Committee] = true
		out = append(out, d.Committee)
	}
	sort.Strings(out)
	return out
}

func (r *Roster) filter(keep func(model.Delegate) bool) []model.Delegate {
	out := make([]model.Delegate, 0, len(r.delegates))
	for _, d := range r.delegates {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
