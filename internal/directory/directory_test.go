package directory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestAvailableNotFoundCarriesSpecialty(t *testing.T) {
	dir := Default()

	_, err := dir.BestAvailable("Dermatologist")
	require.Error(t, err)

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Dermatologist", notFound.Specialty)
}

func TestBestAvailablePicksTopRatedAvailable(t *testing.T) {
	dir := Default()

	rec, err := dir.BestAvailable("General Physician")
	require.NoError(t, err)
	assert.Equal(t, "Dr. John Smith", rec.Name)
	assert.Equal(t, 4.8, rec.Rating)
}

func TestBestAvailableSkipsUnavailable(t *testing.T) {
	// One available Nutritionist rated 4.9 and one unavailable rated 4.95:
	// the 4.9 must win, matched case-insensitively.
	dir := New([]SpecialistRecord{
		{Name: "Lisa Gupta, RDN", Specialty: "Nutritionist", Rating: 4.9, Available: true},
		{Name: "Dr. Rachel Kim, RDN", Specialty: "Nutritionist", Rating: 4.95, Available: false},
	})

	rec, err := dir.BestAvailable("nutritionist")
	require.NoError(t, err)
	assert.Equal(t, "Lisa Gupta, RDN", rec.Name)
}

func TestBestAvailableTieBreaksOnLoadOrder(t *testing.T) {
	dir := New([]SpecialistRecord{
		{Name: "First", Specialty: "Cardiologist", Rating: 4.7, Available: true},
		{Name: "Second", Specialty: "Cardiologist", Rating: 4.7, Available: true},
	})

	rec, err := dir.BestAvailable("Cardiologist")
	require.NoError(t, err)
	assert.Equal(t, "First", rec.Name)
}

func TestBestAvailableAllUnavailable(t *testing.T) {
	dir := New([]SpecialistRecord{
		{Name: "Dr. A", Specialty: "Orthopedist", Rating: 4.9, Available: false},
	})

	_, err := dir.BestAvailable("Orthopedist")
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Orthopedist", notFound.Specialty)
}

func TestListSpecialtiesSortedAndDeduplicated(t *testing.T) {
	want := []string{"General Physician", "Nutritionist", "Orthopedist", "Pulmonologist"}

	assert.Equal(t, want, Default().ListSpecialties())

	// The result must not depend on seed order.
	reversed := make([]SpecialistRecord, len(defaultRecords))
	for i, rec := range defaultRecords {
		reversed[len(defaultRecords)-1-i] = rec
	}
	assert.Equal(t, want, New(reversed).ListSpecialties())
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestLoadFilePreservesOrder(t *testing.T) {
	seed := `
- name: Dr. A
  specialty: Cardiologist
  domain: Cardiology
  rating: 4.5
  phone: "+1-555-000-0001"
  email: a@example.com
  available: true
- name: Dr. B
  specialty: Cardiologist
  domain: Cardiology
  rating: 4.5
  phone: "+1-555-000-0002"
  email: b@example.com
  available: true
`
	path := filepath.Join(t.TempDir(), "doctors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0644))

	dir, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, dir.Len())

	rec, err := dir.BestAvailable("Cardiologist")
	require.NoError(t, err)
	assert.Equal(t, "Dr. A", rec.Name)
}
