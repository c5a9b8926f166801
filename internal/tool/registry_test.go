package tool

import (
	"encoding/json"
	"testing"

	"HealthBuddy/internal/directory"
	"HealthBuddy/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *Registry {
	return NewDoctorRegistry(directory.Default())
}

func TestDispatchUnknownCapability(t *testing.T) {
	r := testRegistry()

	_, err := r.Dispatch(session.ToolCall{ID: "call_1", Name: "get_weather", Arguments: "{}"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCapability)
}

func TestDispatchMalformedArguments(t *testing.T) {
	r := testRegistry()

	_, err := r.Dispatch(session.ToolCall{ID: "call_1", Name: CapDoctorDetails, Arguments: "{not json"})
	assert.ErrorIs(t, err, ErrMalformedArguments)
}

func TestDispatchMissingRequiredArgument(t *testing.T) {
	r := testRegistry()

	_, err := r.Dispatch(session.ToolCall{ID: "call_1", Name: CapDoctorDetails, Arguments: "{}"})
	assert.ErrorIs(t, err, ErrMalformedArguments)
}

func TestDispatchListSpecialties(t *testing.T) {
	r := testRegistry()

	result, err := r.Dispatch(session.ToolCall{ID: "call_1", Name: CapListSpecialties, Arguments: ""})
	require.NoError(t, err)

	var specialties []string
	require.NoError(t, json.Unmarshal([]byte(result), &specialties))
	assert.Equal(t, []string{"General Physician", "Nutritionist", "Orthopedist", "Pulmonologist"}, specialties)
}

func TestDispatchDoctorDetails(t *testing.T) {
	r := testRegistry()

	result, err := r.Dispatch(session.ToolCall{
		ID:        "call_1",
		Name:      CapDoctorDetails,
		Arguments: `{"specialty": "Nutritionist"}`,
	})
	require.NoError(t, err)

	var details map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(result), &details))
	assert.Equal(t, "Lisa Gupta, RDN", details["name"])
	assert.Equal(t, 4.9, details["rating"])
}

func TestDispatchDoctorDetailsMissReturnsErrorPayload(t *testing.T) {
	r := testRegistry()

	// A directory miss is a normal tool result, not a dispatch failure.
	result, err := r.Dispatch(session.ToolCall{
		ID:        "call_1",
		Name:      CapDoctorDetails,
		Arguments: `{"specialty": "Dermatologist"}`,
	})
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(result), &payload))
	assert.Equal(t, "No available Dermatologist found.", payload["error"])
}

func TestDispatchIsIdempotent(t *testing.T) {
	r := testRegistry()
	call := session.ToolCall{ID: "call_1", Name: CapListSpecialties, Arguments: "{}"}

	first, err := r.Dispatch(call)
	require.NoError(t, err)
	second, err := r.Dispatch(call)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDeclarationsAdvertiseBothCapabilities(t *testing.T) {
	decls := testRegistry().Declarations()
	require.Len(t, decls, 2)

	assert.Equal(t, "function", decls[0].Type)
	assert.Equal(t, CapListSpecialties, decls[0].Function.Name)
	assert.Nil(t, decls[0].Function.Parameters)

	assert.Equal(t, CapDoctorDetails, decls[1].Function.Name)
	require.NotNil(t, decls[1].Function.Parameters)
	assert.Equal(t, []string{"specialty"}, decls[1].Function.Parameters["required"])
}
