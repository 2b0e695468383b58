package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lifeline/lifeline/internal/domain/bloodrequest"
	"github.com/lifeline/lifeline/internal/domain/compat"
	"github.com/lifeline/lifeline/internal/domain/donor"
	"github.com/lifeline/lifeline/internal/domain/drive"
	"github.com/lifeline/lifeline/internal/platform/gemini"
	"github.com/lifeline/lifeline/pkg/fault"
)

// Result feedback policies: how many executed function results are returned
// to the model for the final synthesis step. Every requested call is always
// executed and reported to the caller either way.
const (
	ResultsFirst = "first"
	ResultsAll   = "all"
)

const systemPrompt = `You are Lifeline, an assistant for a blood donation platform.
You help users find compatible blood donors, look up ABO/Rh blood type compatibility,
find upcoming blood donation drives, and register emergency blood requests.
Use the declared functions for any factual lookup instead of answering from memory.
Be concise and calm. Never invent donor contact details.`

// Generator produces a model reply for a turn sequence. Implemented by the
// Gemini client and by the offline responder.
type Generator interface {
	GenerateContent(ctx context.Context, req *gemini.GenerateContentRequest) (*gemini.GenerateContentResponse, error)
}

// DonorSearcher is the donor resolver slice the dispatcher calls. Everything
// it returns is already anonymized.
type DonorSearcher interface {
	Search(ctx context.Context, q donor.Query) (*donor.SearchResult, error)
}

type DriveFinder interface {
	FindUpcoming(ctx context.Context, location string) ([]*drive.Drive, error)
}

type EmergencyRegistrar interface {
	Submit(ctx context.Context, sub bloodrequest.Submission) (*bloodrequest.Acknowledgement, error)
}

type Service struct {
	model          Generator
	donors         DonorSearcher
	drives         DriveFinder
	emergencies    EmergencyRegistrar
	resultPolicy   string
	emergencyPhone string
}

// NewService wires the dispatcher. resultPolicy is ResultsFirst or
// ResultsAll; emergencyPhone appears in degraded replies so emergencies never
// dead-end on a broken assistant.
func NewService(model Generator, donors DonorSearcher, drives DriveFinder, emergencies EmergencyRegistrar, resultPolicy, emergencyPhone string) *Service {
	if resultPolicy != ResultsAll {
		resultPolicy = ResultsFirst
	}
	return &Service{
		model:          model,
		donors:         donors,
		drives:         drives,
		emergencies:    emergencies,
		resultPolicy:   resultPolicy,
		emergencyPhone: emergencyPhone,
	}
}

// Send processes one chat turn: append the user message, consult the model,
// execute any requested function calls, feed results back for synthesis, and
// return the final reply with updated history. Model and store outages
// degrade to an apologetic reply; the user's turn is never lost.
func (s *Service) Send(ctx context.Context, message string, history []Turn) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fault.Validation("message", "message is required")
	}
	history = append(history, Turn{Role: RoleUser, Content: message})

	req := &gemini.GenerateContentRequest{
		Contents:          toContents(history),
		Tools:             declaredTools,
		SystemInstruction: &gemini.Content{Parts: []gemini.Part{{Text: systemPrompt}}},
	}
	resp, err := s.model.GenerateContent(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("model call failed")
		return s.degrade(history, nil), nil
	}

	calls := resp.FunctionCalls()
	if len(calls) == 0 {
		reply := resp.Text()
		history = append(history, Turn{Role: RoleAssistant, Content: reply})
		return &Reply{Reply: reply, History: history}, nil
	}

	results := make([]FunctionCallResult, 0, len(calls))
	for _, call := range calls {
		res, err := s.execute(ctx, call)
		results = append(results, res)
		if err != nil {
			log.Error().Err(err).Str("function", call.Name).Msg("function execution failed")
			return s.degrade(history, results), nil
		}
	}

	feedback := results
	if s.resultPolicy == ResultsFirst {
		feedback = results[:1]
	}
	fnParts := make([]gemini.Part, 0, len(feedback))
	for _, res := range feedback {
		fnParts = append(fnParts, gemini.Part{FunctionResponse: &gemini.FunctionResponse{
			Name:     res.Function,
			Response: responsePayload(res),
		}})
	}

	followUp := &gemini.GenerateContentRequest{
		Contents: append(toContents(history),
			gemini.Content{Role: "model", Parts: callParts(calls)},
			gemini.Content{Role: "function", Parts: fnParts},
		),
		Tools:             declaredTools,
		SystemInstruction: req.SystemInstruction,
	}
	final, err := s.model.GenerateContent(ctx, followUp)
	if err != nil {
		log.Error().Err(err).Msg("model synthesis call failed")
		return s.degrade(history, results), nil
	}

	reply := final.Text()
	history = append(history, Turn{Role: RoleAssistant, Content: reply, FunctionCalls: results})
	return &Reply{Reply: reply, FunctionCalls: results, History: history}, nil
}

// execute runs one requested function. The returned error is non-nil only
// for store faults, which abort the turn; every other failure is encoded in
// the result so the model can respond to it.
func (s *Service) execute(ctx context.Context, call gemini.FunctionCall) (FunctionCallResult, error) {
	res := FunctionCallResult{Function: call.Name, Args: call.Args}

	fn, ok := ParseFunction(call.Name)
	if !ok {
		res.Error = "unknown function: " + call.Name
		log.Warn().Str("function", call.Name).Msg("model requested unknown function")
		return res, nil
	}

	var (
		out map[string]interface{}
		err error
	)
	switch fn {
	case FindCompatibleDonors:
		out, err = s.findDonors(ctx, call.Args)
	case FindBloodDrives:
		out, err = s.findDrives(ctx, call.Args)
	case GetBloodCompatibility:
		out, err = s.compatibility(call.Args)
	case RegisterEmergencyRequest:
		out, err = s.registerEmergency(ctx, call.Args)
	}
	if err != nil {
		res.Error = err.Error()
		if fault.KindOf(err) == fault.KindStore {
			return res, err
		}
		return res, nil
	}
	res.Success = true
	res.Result = out
	return res, nil
}

func (s *Service) findDonors(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	q := donor.Query{
		RequiredBloodType: argString(args, "required_blood_type"),
		HospitalLocation:  argString(args, "hospital_location"),
		Urgency:           argString(args, "urgency"),
		MaxDistanceKm:     argFloat(args, "max_distance_km"),
	}
	if q.Urgency == "" {
		q.Urgency = string(bloodrequest.UrgencyMedium)
	}
	result, err := s.donors.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return toMap(result)
}

func (s *Service) findDrives(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	drives, err := s.drives.FindUpcoming(ctx, argString(args, "location"))
	if err != nil {
		return nil, err
	}
	return toMap(struct {
		Drives     []*drive.Drive `json:"drives"`
		TotalFound int            `json:"total_found"`
	}{Drives: drives, TotalFound: len(drives)})
}

func (s *Service) compatibility(args map[string]interface{}) (map[string]interface{}, error) {
	bt, err := compat.ParseBloodType(argString(args, "blood_type"))
	if err != nil {
		return nil, fault.Validation("blood_type", err.Error())
	}
	dir, ok := compat.ParseDirection(argString(args, "direction"))
	if !ok {
		return nil, fault.Validation("direction", "direction must be canDonateTo or canReceiveFrom")
	}
	types, err := compat.Compatibility(bt, dir)
	if err != nil {
		return nil, fault.Validation("blood_type", err.Error())
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return map[string]interface{}{
		"blood_type":       string(bt),
		"direction":        string(dir),
		"compatible_types": names,
	}, nil
}

func (s *Service) registerEmergency(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	sub := bloodrequest.Submission{
		BloodType:    argString(args, "blood_type"),
		HospitalName: argString(args, "hospital_name"),
		ContactInfo:  argString(args, "contact_info"),
		Urgency:      argString(args, "urgency"),
		UnitsNeeded:  argInt(args, "units_needed"),
	}
	if sub.Urgency == "" {
		sub.Urgency = string(bloodrequest.UrgencyMedium)
	}
	ack, err := s.emergencies.Submit(ctx, sub)
	if err != nil {
		return nil, err
	}
	return toMap(ack)
}

// degrade builds the apologetic fallback reply. Emergencies must never
// dead-end on a broken assistant, so the reply always points at the
// phone-based channel when one is configured.
func (s *Service) degrade(history []Turn, results []FunctionCallResult) *Reply {
	msg := "I'm sorry, I'm having trouble processing your request right now. Please try again in a moment."
	if s.emergencyPhone != "" {
		msg += fmt.Sprintf(" If this is a blood emergency, please call %s immediately.", s.emergencyPhone)
	}
	history = append(history, Turn{Role: RoleAssistant, Content: msg, FunctionCalls: results})
	return &Reply{Reply: msg, FunctionCalls: results, History: history}
}

func toContents(history []Turn) []gemini.Content {
	contents := make([]gemini.Content, 0, len(history))
	for _, t := range history {
		role := "user"
		if t.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, gemini.Content{Role: role, Parts: []gemini.Part{{Text: t.Content}}})
	}
	return contents
}

func callParts(calls []gemini.FunctionCall) []gemini.Part {
	parts := make([]gemini.Part, 0, len(calls))
	for i := range calls {
		parts = append(parts, gemini.Part{FunctionCall: &calls[i]})
	}
	return parts
}

func responsePayload(res FunctionCallResult) map[string]interface{} {
	if res.Success {
		payload := map[string]interface{}{"success": true}
		for k, v := range res.Result {
			payload[k] = v
		}
		return payload
	}
	return map[string]interface{}{"success": false, "error": res.Error}
}

// toMap round-trips a value through JSON so nested structs become the plain
// maps the wire format wants.
func toMap(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func argString(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func argFloat(args map[string]interface{}, key string) float64 {
	f, _ := args[key].(float64)
	return f
}

func argInt(args map[string]interface{}, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
