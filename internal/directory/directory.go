package directory

import (
	"fmt"
	"sort"
	"strings"
)

// SpecialistRecord describes a single doctor in the directory.
type SpecialistRecord struct {
	Name      string  `json:"name" yaml:"name"`
	Specialty string  `json:"specialty" yaml:"specialty"`
	Domain    string  `json:"domain" yaml:"domain"`
	Rating    float64 `json:"rating" yaml:"rating"`
	Phone     string  `json:"phone" yaml:"phone"`
	Email     string  `json:"email" yaml:"email"`
	Available bool    `json:"available" yaml:"available"`
}

// NotFoundError reports that no available specialist matched a query. It
// carries the requested specialty so callers can render a message.
type NotFoundError struct {
	Specialty string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no available %s found", e.Specialty)
}

// Directory is a read-only index over a fixed, ordered set of specialist
// records loaded once at process start.
type Directory struct {
	records []SpecialistRecord
}

// New builds a directory over the given records. The slice order is
// significant: ties in BestAvailable resolve to the earliest record.
func New(records []SpecialistRecord) *Directory {
	recs := make([]SpecialistRecord, len(records))
	copy(recs, records)
	return &Directory{records: recs}
}

// ListSpecialties returns the distinct specialty values across all records,
// case-preserving, alphabetically sorted.
func (d *Directory) ListSpecialties() []string {
	seen := make(map[string]struct{})
	specialties := []string{}
	for _, rec := range d.records {
		if _, ok := seen[rec.Specialty]; ok {
			continue
		}
		seen[rec.Specialty] = struct{}{}
		specialties = append(specialties, rec.Specialty)
	}
	sort.Strings(specialties)
	return specialties
}

// BestAvailable returns the highest-rated available specialist for the given
// specialty, matched case-insensitively. Ties resolve to the record appearing
// first in load order. A miss returns *NotFoundError.
func (d *Directory) BestAvailable(specialty string) (SpecialistRecord, error) {
	var best SpecialistRecord
	found := false
	for _, rec := range d.records {
		if !rec.Available || !strings.EqualFold(rec.Specialty, specialty) {
			continue
		}
		if !found || rec.Rating > best.Rating {
			best = rec
			found = true
		}
	}
	if !found {
		return SpecialistRecord{}, &NotFoundError{Specialty: specialty}
	}
	return best, nil
}

// Len returns the number of records in the directory.
func (d *Directory) Len() int {
	return len(d.records)
}
