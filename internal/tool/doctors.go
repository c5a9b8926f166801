package tool

import (
	"fmt"

	"HealthBuddy/internal/directory"
)

// Capability names, matching the wire protocol the model is prompted with.
const (
	CapListSpecialties = "get_doctor_specialties"
	CapDoctorDetails   = "get_doctor_details"
)

// NewDoctorRegistry builds the registry over the specialist directory with
// the two doctor-lookup capabilities.
func NewDoctorRegistry(dir *directory.Directory) *Registry {
	r := NewRegistry()

	r.Register(Capability{
		Name:        CapListSpecialties,
		Description: "Retrieve a list of available doctor specialties in the database.",
		Handler: func(args map[string]interface{}) (interface{}, error) {
			return dir.ListSpecialties(), nil
		},
	})

	r.Register(Capability{
		Name:        CapDoctorDetails,
		Description: "Get details of the highest-rated available doctor for a given specialty.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"specialty": map[string]interface{}{
					"type":        "string",
					"description": "The specialty of the doctor (e.g., Nutritionist, Orthopedist).",
				},
			},
			"required": []string{"specialty"},
		},
		Required: []string{"specialty"},
		Handler: func(args map[string]interface{}) (interface{}, error) {
			specialty, ok := args["specialty"].(string)
			if !ok {
				return nil, fmt.Errorf("%w: specialty must be a string", ErrMalformedArguments)
			}

			rec, err := dir.BestAvailable(specialty)
			if err != nil {
				// A directory miss is a normal result, not a dispatch
				// failure: the model sees the error payload and reacts.
				return map[string]interface{}{
					"error": fmt.Sprintf("No available %s found.", specialty),
				}, nil
			}

			return map[string]interface{}{
				"name":      rec.Name,
				"specialty": rec.Specialty,
				"phone":     rec.Phone,
				"email":     rec.Email,
				"rating":    rec.Rating,
			}, nil
		},
	})

	return r
}
