package chat

import (
	"github.com/lifeline/lifeline/internal/platform/gemini"
)

// Function is the closed set of operations the model may request. Dispatch is
// an exhaustive switch over these values; names outside the set become an
// unknown-function result, never a lookup failure.
type Function string

const (
	FindCompatibleDonors     Function = "findCompatibleDonors"
	FindBloodDrives          Function = "findBloodDrives"
	GetBloodCompatibility    Function = "getBloodCompatibility"
	RegisterEmergencyRequest Function = "registerEmergencyRequest"
)

// ParseFunction maps a model-supplied name onto the closed set.
func ParseFunction(name string) (Function, bool) {
	switch Function(name) {
	case FindCompatibleDonors, FindBloodDrives, GetBloodCompatibility, RegisterEmergencyRequest:
		return Function(name), true
	}
	return "", false
}

var bloodTypeEnum = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// declaredTools is the fixed function surface offered to the model on every
// turn.
var declaredTools = []gemini.Tool{{
	FunctionDeclarations: []gemini.FunctionDeclaration{
		{
			Name:        string(FindCompatibleDonors),
			Description: "Find available, anonymized blood donors compatible with a required blood type near a hospital location.",
			Parameters: &gemini.Schema{
				Type: "object",
				Properties: map[string]*gemini.Schema{
					"required_blood_type": {Type: "string", Enum: bloodTypeEnum, Description: "Blood type the patient needs."},
					"hospital_location":   {Type: "string", Description: "City or area of the hospital."},
					"urgency":             {Type: "string", Enum: []string{"low", "medium", "high", "critical"}},
					"max_distance_km":     {Type: "number", Description: "Search radius in kilometres."},
				},
				Required: []string{"required_blood_type", "hospital_location"},
			},
		},
		{
			Name:        string(FindBloodDrives),
			Description: "List upcoming blood donation drives, optionally filtered by location.",
			Parameters: &gemini.Schema{
				Type: "object",
				Properties: map[string]*gemini.Schema{
					"location": {Type: "string", Description: "City or area to search in."},
				},
			},
		},
		{
			Name:        string(GetBloodCompatibility),
			Description: "Look up which blood types a given type can donate to or receive from.",
			Parameters: &gemini.Schema{
				Type: "object",
				Properties: map[string]*gemini.Schema{
					"blood_type": {Type: "string", Enum: bloodTypeEnum},
					"direction":  {Type: "string", Enum: []string{"canDonateTo", "canReceiveFrom"}},
				},
				Required: []string{"blood_type", "direction"},
			},
		},
		{
			Name:        string(RegisterEmergencyRequest),
			Description: "Register an emergency blood request for a hospital. Use only when the user reports an actual emergency need.",
			Parameters: &gemini.Schema{
				Type: "object",
				Properties: map[string]*gemini.Schema{
					"blood_type":    {Type: "string", Enum: bloodTypeEnum},
					"hospital_name": {Type: "string"},
					"contact_info":  {Type: "string", Description: "Phone number to reach the requester."},
					"urgency":       {Type: "string", Enum: []string{"low", "medium", "high", "critical"}},
					"units_needed":  {Type: "integer", Description: "Units of blood needed, at least 1."},
				},
				Required: []string{"blood_type", "hospital_name", "contact_info", "urgency"},
			},
		},
	},
}}
