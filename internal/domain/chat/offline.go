package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/lifeline/lifeline/internal/platform/gemini"
)

// Offline is a deterministic Generator for deployments without a model API
// key. It maps keyword patterns onto the same function-calling protocol the
// real model uses, so the dispatcher code path is identical in both modes.
type Offline struct{}

func NewOffline() *Offline { return &Offline{} }

var bloodTypeRe = regexp.MustCompile(`(?i)\b(AB|A|B|O)\s*([+-])`)

func (o *Offline) GenerateContent(_ context.Context, req *gemini.GenerateContentRequest) (*gemini.GenerateContentResponse, error) {
	if len(req.Contents) == 0 {
		return textResponse("How can I help you with blood donation today?"), nil
	}

	// Second round: a function response is present, synthesize a reply.
	last := req.Contents[len(req.Contents)-1]
	for _, p := range last.Parts {
		if p.FunctionResponse != nil {
			return textResponse(summarize(p.FunctionResponse)), nil
		}
	}

	msg := lastUserText(req.Contents)
	lower := strings.ToLower(msg)
	bt := extractBloodType(msg)

	switch {
	case bt != "" && strings.Contains(lower, "receive"):
		return callResponse(GetBloodCompatibility, map[string]interface{}{
			"blood_type": bt,
			"direction":  "canReceiveFrom",
		}), nil
	case bt != "" && strings.Contains(lower, "donate"):
		return callResponse(GetBloodCompatibility, map[string]interface{}{
			"blood_type": bt,
			"direction":  "canDonateTo",
		}), nil
	case strings.Contains(lower, "drive") || strings.Contains(lower, "camp"):
		return callResponse(FindBloodDrives, map[string]interface{}{
			"location": extractLocation(msg),
		}), nil
	case bt != "" && strings.Contains(lower, "donor"):
		location := extractLocation(msg)
		if location == "" {
			return textResponse("Which city or area should I search for donors in?"), nil
		}
		return callResponse(FindCompatibleDonors, map[string]interface{}{
			"required_blood_type": bt,
			"hospital_location":   location,
		}), nil
	case strings.Contains(lower, "emergency") || strings.Contains(lower, "urgent"):
		return textResponse("To register an emergency blood request I need the blood type, hospital name and a contact number. You can also submit it directly through the emergency request form."), nil
	}

	return textResponse("I can help you find compatible donors, check blood type compatibility, list upcoming donation drives, or register an emergency blood request."), nil
}

func textResponse(text string) *gemini.GenerateContentResponse {
	return &gemini.GenerateContentResponse{Candidates: []gemini.Candidate{{
		Content: gemini.Content{Role: "model", Parts: []gemini.Part{{Text: text}}},
	}}}
}

func callResponse(fn Function, args map[string]interface{}) *gemini.GenerateContentResponse {
	return &gemini.GenerateContentResponse{Candidates: []gemini.Candidate{{
		Content: gemini.Content{Role: "model", Parts: []gemini.Part{{
			FunctionCall: &gemini.FunctionCall{Name: string(fn), Args: args},
		}}},
	}}}
}

func lastUserText(contents []gemini.Content) string {
	for i := len(contents) - 1; i >= 0; i-- {
		if contents[i].Role != "user" {
			continue
		}
		for _, p := range contents[i].Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

func extractBloodType(msg string) string {
	m := bloodTypeRe.FindStringSubmatch(msg)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1]) + m[2]
}

// extractLocation takes the words following the last "in" as a location
// guess. Matching is done word by word; byte offsets from a case-folded copy
// are not safe to apply to the original string.
func extractLocation(msg string) string {
	words := strings.Fields(msg)
	for i := len(words) - 2; i >= 0; i-- {
		if strings.EqualFold(words[i], "in") {
			loc := strings.Join(words[i+1:], " ")
			return strings.Trim(loc, "?.!,")
		}
	}
	return ""
}

func summarize(resp *gemini.FunctionResponse) string {
	if ok, _ := resp.Response["success"].(bool); !ok {
		errMsg, _ := resp.Response["error"].(string)
		return fmt.Sprintf("I couldn't complete that: %s", errMsg)
	}

	switch Function(resp.Name) {
	case GetBloodCompatibility:
		types := stringSlice(resp.Response["compatible_types"])
		bt, _ := resp.Response["blood_type"].(string)
		dir, _ := resp.Response["direction"].(string)
		verb := "donate to"
		if dir == "canReceiveFrom" {
			verb = "receive from"
		}
		return fmt.Sprintf("%s can %s: %s", bt, verb, strings.Join(types, ", "))
	case FindCompatibleDonors:
		n := intValue(resp.Response["total_found"])
		if n == 0 {
			return "I couldn't find any available compatible donors in that area right now."
		}
		return fmt.Sprintf("I found %d available compatible donor(s). For privacy, only blood type, area and eligibility are shown.", n)
	case FindBloodDrives:
		n := intValue(resp.Response["total_found"])
		if n == 0 {
			return "There are no upcoming blood drives matching that search."
		}
		return fmt.Sprintf("There are %d upcoming blood drive(s) matching your search.", n)
	case RegisterEmergencyRequest:
		id, _ := resp.Response["request_id"].(string)
		return fmt.Sprintf("Your emergency blood request has been registered (reference %s). Hospital staff and compatible donors are being notified.", id)
	}
	return "Done."
}

func stringSlice(v interface{}) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func intValue(v interface{}) int {
	switch vv := v.(type) {
	case int:
		return vv
	case float64:
		return int(vv)
	}
	return 0
}
