package chat

import (
	"context"
	"strings"
	"testing"
)

func newOfflineService(donors *stubDonors, drives *stubDrives) *Service {
	return newTestService(NewOffline(), donors, drives, nil, ResultsFirst)
}

func TestOffline_CompatibilityQuestion(t *testing.T) {
	donors := &stubDonors{}
	svc := newOfflineService(donors, nil)

	reply, err := svc.Send(context.Background(), "What blood types can O- receive from?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reply.FunctionCalls) != 1 || reply.FunctionCalls[0].Function != string(GetBloodCompatibility) {
		t.Fatalf("expected compatibility lookup, got %+v", reply.FunctionCalls)
	}
	types := stringSlice(reply.FunctionCalls[0].Result["compatible_types"])
	if len(types) != 1 || types[0] != "O-" {
		t.Errorf("expected exactly [O-], got %v", types)
	}
	if !strings.Contains(reply.Reply, "O-") {
		t.Errorf("expected reply to mention O-: %s", reply.Reply)
	}
	if donors.calls != 0 {
		t.Error("compatibility question must not hit the donor store")
	}
}

func TestOffline_DonateQuestion(t *testing.T) {
	svc := newOfflineService(nil, nil)

	reply, err := svc.Send(context.Background(), "Who can AB+ donate to?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	types := stringSlice(reply.FunctionCalls[0].Result["compatible_types"])
	if len(types) != 1 || types[0] != "AB+" {
		t.Errorf("expected exactly [AB+], got %v", types)
	}
}

func TestOffline_DriveQuestion(t *testing.T) {
	drives := &stubDrives{}
	svc := newOfflineService(nil, drives)

	reply, err := svc.Send(context.Background(), "Are there any blood drives in Pune?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if drives.calls != 1 {
		t.Fatalf("expected drive lookup, got %d calls", drives.calls)
	}
	if !strings.Contains(reply.Reply, "no upcoming blood drives") {
		t.Errorf("unexpected reply: %s", reply.Reply)
	}
}

func TestOffline_DonorQuestionNeedsLocation(t *testing.T) {
	donors := &stubDonors{}
	svc := newOfflineService(donors, nil)

	reply, err := svc.Send(context.Background(), "Find O+ donors", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if donors.calls != 0 {
		t.Error("expected no store query without a location")
	}
	if !strings.Contains(strings.ToLower(reply.Reply), "city") {
		t.Errorf("expected a location prompt, got %s", reply.Reply)
	}
}

func TestOffline_DefaultHelp(t *testing.T) {
	svc := newOfflineService(nil, nil)
	reply, err := svc.Send(context.Background(), "hello there", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply.Reply, "compatible donors") {
		t.Errorf("expected capability overview, got %s", reply.Reply)
	}
}

func TestOffline_DriveQuestionNonASCII(t *testing.T) {
	drives := &stubDrives{}
	svc := newOfflineService(nil, drives)

	// "Ⱥ" case-folds to a longer UTF-8 sequence, so byte offsets computed on
	// a lowercased copy do not transfer back to the original message.
	reply, err := svc.Send(context.Background(), "Ⱥ blood camp in Đà Nẵng?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if drives.calls != 1 {
		t.Fatalf("expected drive lookup, got %d calls", drives.calls)
	}
	if got := drives.lastLocation; got != "Đà Nẵng" {
		t.Errorf("expected location %q, got %q", "Đà Nẵng", got)
	}
	if reply.Reply == "" {
		t.Error("expected a non-empty reply")
	}
}

func TestExtractLocation(t *testing.T) {
	cases := map[string]string{
		"Are there drives in Pune?":   "Pune",
		"donors IN New Delhi please":  "New Delhi please",
		"Ⱥ blood camp in Đà Nẵng?":    "Đà Nẵng",
		"Ⱥ camp in ":                  "",
		"no location mentioned here":  "",
		"İstanbul in İzmir tomorrow.": "İzmir tomorrow",
	}

	for in, want := range cases {
		if got := extractLocation(in); got != want {
			t.Errorf("extractLocation(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractBloodType(t *testing.T) {
	cases := map[string]string{
		"can AB- donate":        "AB-",
		"need o+ blood":         "O+",
		"hello there":           "",
		"What can B+ receive?":  "B+",
		"a positive note about": "",
	}
	for in, want := range cases {
		if got := extractBloodType(in); got != want {
			t.Errorf("extractBloodType(%q) = %q, want %q", in, got, want)
		}
	}
}
