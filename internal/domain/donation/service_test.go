package donation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lifeline/lifeline/internal/domain/compat"
	"github.com/lifeline/lifeline/pkg/fault"
)

type mockRepo struct {
	donations map[uuid.UUID]*Donation
	createErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{donations: make(map[uuid.UUID]*Donation)}
}

func (m *mockRepo) Create(_ context.Context, d *Donation) error {
	if m.createErr != nil {
		return m.createErr
	}
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	m.donations[d.ID] = d
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Donation, error) {
	d, ok := m.donations[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return d, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Donation, int, error) {
	var result []*Donation
	for _, d := range m.donations {
		result = append(result, d)
	}
	return result, len(result), nil
}

func (m *mockRepo) ListByDonor(_ context.Context, donorID uuid.UUID, limit, offset int) ([]*Donation, int, error) {
	var result []*Donation
	for _, d := range m.donations {
		if d.DonorID == donorID {
			result = append(result, d)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) SetLedgerTx(_ context.Context, id uuid.UUID, txID string) error {
	d, ok := m.donations[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	d.LedgerTxID = &txID
	return nil
}

type mockDonorLog struct {
	marked map[uuid.UUID]time.Time
	err    error
}

func newMockDonorLog() *mockDonorLog {
	return &mockDonorLog{marked: make(map[uuid.UUID]time.Time)}
}

func (m *mockDonorLog) MarkDonated(_ context.Context, id uuid.UUID, at time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.marked[id] = at
	return nil
}

type mockLedger struct {
	notes [][]byte
	txID  string
	err   error
}

func (m *mockLedger) Anchor(_ context.Context, note []byte) (string, error) {
	m.notes = append(m.notes, note)
	if m.err != nil {
		return "", m.err
	}
	return m.txID, nil
}

func validDonation() *Donation {
	return &Donation{
		DonorID:   uuid.New(),
		BloodType: compat.ONegative,
		Hospital:  "City General",
	}
}

func TestRecord_Defaults(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil)

	d := validDonation()
	if err := svc.Record(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Units != 1 {
		t.Errorf("expected units default 1, got %d", d.Units)
	}
	if d.DonatedAt.IsZero() {
		t.Error("expected donated_at to be set")
	}
	if d.LedgerTxID != nil {
		t.Error("expected no ledger tx without a ledger")
	}
}

func TestRecord_Validation(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil)

	cases := []struct {
		name   string
		mutate func(*Donation)
		field  string
	}{
		{"missing donor", func(d *Donation) { d.DonorID = uuid.Nil }, "donor_id"},
		{"bad blood type", func(d *Donation) { d.BloodType = "X" }, "blood_type"},
		{"missing hospital", func(d *Donation) { d.Hospital = " " }, "hospital"},
		{"negative units", func(d *Donation) { d.Units = -1 }, "units"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDonation()
			tc.mutate(d)
			err := svc.Record(context.Background(), d)
			if err == nil {
				t.Fatal("expected error")
			}
			if fault.FieldOf(err) != tc.field {
				t.Errorf("expected field %s, got %s", tc.field, fault.FieldOf(err))
			}
		})
	}
	if len(repo.donations) != 0 {
		t.Errorf("expected no donations persisted, got %d", len(repo.donations))
	}
}

func TestRecord_MarksDonor(t *testing.T) {
	repo := newMockRepo()
	donors := newMockDonorLog()
	svc := NewService(repo, donors, nil)

	d := validDonation()
	if err := svc.Record(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := donors.marked[d.DonorID]; !ok {
		t.Error("expected donor marked as donated")
	}
}

func TestRecord_AnchorsOnLedger(t *testing.T) {
	repo := newMockRepo()
	ledger := &mockLedger{txID: "TX123"}
	svc := NewService(repo, nil, ledger)

	d := validDonation()
	if err := svc.Record(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.LedgerTxID == nil || *d.LedgerTxID != "TX123" {
		t.Errorf("expected ledger tx TX123, got %v", d.LedgerTxID)
	}
	if len(ledger.notes) != 1 {
		t.Fatalf("expected 1 anchored note, got %d", len(ledger.notes))
	}

	var note map[string]interface{}
	if err := json.Unmarshal(ledger.notes[0], &note); err != nil {
		t.Fatalf("note is not valid JSON: %v", err)
	}
	if note["blood_type"] != "O-" {
		t.Errorf("unexpected note: %v", note)
	}
	if strings.Contains(string(ledger.notes[0]), d.DonorID.String()) {
		t.Error("ledger note must not contain the donor id")
	}
}

func TestRecord_LedgerFailureIsSwallowed(t *testing.T) {
	repo := newMockRepo()
	ledger := &mockLedger{err: fmt.Errorf("node unreachable")}
	svc := NewService(repo, nil, ledger)

	d := validDonation()
	if err := svc.Record(context.Background(), d); err != nil {
		t.Fatalf("expected record to succeed despite ledger failure, got %v", err)
	}
	if d.LedgerTxID != nil {
		t.Error("expected no ledger tx id after failure")
	}
	if repo.donations[d.ID] == nil {
		t.Error("expected donation persisted")
	}
}

func TestRecord_StoreError(t *testing.T) {
	repo := newMockRepo()
	repo.createErr = fmt.Errorf("connection refused")
	svc := NewService(repo, nil, nil)

	err := svc.Record(context.Background(), validDonation())
	if err == nil {
		t.Fatal("expected error")
	}
	if fault.KindOf(err) != fault.KindStore {
		t.Errorf("expected store error, got %v", err)
	}
}
