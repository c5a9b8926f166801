package directory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultRecords is the built-in doctor table, used when no seed file is
// configured.
var defaultRecords = []SpecialistRecord{
	{Name: "Dr. John Smith", Specialty: "General Physician", Domain: "General Medicine", Rating: 4.8, Phone: "+1-555-123-4567", Email: "drjohn@example.com", Available: true},
	{Name: "Dr. Sarah Lee", Specialty: "Orthopedist", Domain: "Orthopedic Surgery", Rating: 4.9, Phone: "+1-555-987-6543", Email: "drsarah@example.com", Available: true},
	{Name: "Dr. Amit Patel", Specialty: "Orthopedist", Domain: "Orthopedic Surgery", Rating: 4.6, Phone: "+1-555-456-7890", Email: "dramit@example.com", Available: false},
	{Name: "Dr. Emily Chen", Specialty: "Pulmonologist", Domain: "Respiratory Medicine", Rating: 4.7, Phone: "+1-555-321-1234", Email: "dremily@example.com", Available: true},
	{Name: "Dr. Michael Brown", Specialty: "General Physician", Domain: "General Medicine", Rating: 4.5, Phone: "+1-555-654-3210", Email: "drmichael@example.com", Available: true},
	{Name: "Lisa Gupta, RDN", Specialty: "Nutritionist", Domain: "Dietetics", Rating: 4.9, Phone: "+1-555-111-2222", Email: "lisa.gupta@example.com", Available: true},
	{Name: "Priya Sharma, RDN", Specialty: "Nutritionist", Domain: "Vegetarian Nutrition", Rating: 4.7, Phone: "+1-555-333-4444", Email: "priya.sharma@example.com", Available: true},
	{Name: "Dr. Rachel Kim, RDN", Specialty: "Nutritionist", Domain: "Clinical Nutrition", Rating: 4.6, Phone: "+1-555-555-6666", Email: "rachel.kim@example.com", Available: false},
}

// Default returns a directory over the built-in doctor table.
func Default() *Directory {
	return New(defaultRecords)
}

// LoadFile builds a directory from a YAML seed file containing a list of
// specialist records. Record order in the file is preserved.
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory seed: %w", err)
	}

	var records []SpecialistRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse directory seed: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("directory seed %s contains no records", path)
	}

	return New(records), nil
}
