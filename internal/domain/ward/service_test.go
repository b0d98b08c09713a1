package ward

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/hms/internal/platform/apperr"
)

// -- Mocks --

type mockBedRepo struct {
	items map[uuid.UUID]*Bed
}

func newMockBedRepo() *mockBedRepo {
	return &mockBedRepo{items: make(map[uuid.UUID]*Bed)}
}

func (m *mockBedRepo) Create(_ context.Context, b *Bed) error {
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	b.UpdatedAt = time.Now()
	m.items[b.ID] = b
	return nil
}

func (m *mockBedRepo) GetByID(_ context.Context, id uuid.UUID) (*Bed, error) {
	b, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("bed not found")
	}
	cp := *b
	return &cp, nil
}

func (m *mockBedRepo) Update(_ context.Context, b *Bed) error {
	m.items[b.ID] = b
	return nil
}

func (m *mockBedRepo) List(_ context.Context, f BedFilter, limit, offset int) ([]*Bed, int, error) {
	var out []*Bed
	for _, b := range m.items {
		if f.WardType != "" && b.WardType != f.WardType {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, b)
	}
	return out, len(out), nil
}

func (m *mockBedRepo) OccupyIfVacant(_ context.Context, bedID, patientID, admissionID, doctorID uuid.UUID) (bool, error) {
	b, ok := m.items[bedID]
	if !ok {
		return false, apperr.NotFound("bed not found")
	}
	if b.Status != BedVacant {
		return false, nil
	}
	now := time.Now()
	b.Status = BedOccupied
	b.CurrentPatientID = &patientID
	b.CurrentAdmissionID = &admissionID
	b.AssignedDoctorID = &doctorID
	b.AdmittedAt = &now
	return true, nil
}

func (m *mockBedRepo) Free(_ context.Context, bedID uuid.UUID) error {
	b, ok := m.items[bedID]
	if !ok {
		return apperr.NotFound("bed not found")
	}
	b.Status = BedVacant
	b.CurrentPatientID = nil
	b.CurrentAdmissionID = nil
	b.AssignedDoctorID = nil
	b.AssignedNurseID = nil
	b.AdmittedAt = nil
	return nil
}

func (m *mockBedRepo) CountByStatusAndWard(_ context.Context) (*OccupancySummary, error) {
	s := &OccupancySummary{ByWardType: []WardTypeCount{}}
	for _, b := range m.items {
		s.TotalBeds++
		switch b.Status {
		case BedOccupied:
			s.Occupied++
		case BedVacant:
			s.Vacant++
		case BedReserved:
			s.Reserved++
		case BedMaintenance:
			s.Maintenance++
		case BedCleaning:
			s.Cleaning++
		}
	}
	return s, nil
}

type mockAdmissionRepo struct {
	items map[uuid.UUID]*Admission
}

func newMockAdmissionRepo() *mockAdmissionRepo {
	return &mockAdmissionRepo{items: make(map[uuid.UUID]*Admission)}
}

func (m *mockAdmissionRepo) Create(_ context.Context, a *Admission) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	m.items[a.ID] = a
	return nil
}

func (m *mockAdmissionRepo) GetByID(_ context.Context, id uuid.UUID) (*Admission, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("admission not found")
	}
	cp := *a
	return &cp, nil
}

func (m *mockAdmissionRepo) Update(_ context.Context, a *Admission) error {
	m.items[a.ID] = a
	return nil
}

func (m *mockAdmissionRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Admission, int, error) {
	var out []*Admission
	for _, a := range m.items {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockAdmissionRepo) ListActive(_ context.Context, limit, offset int) ([]*Admission, int, error) {
	var out []*Admission
	for _, a := range m.items {
		if a.Status == AdmissionAdmitted {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockAdmissionRepo) HasActiveForPatient(_ context.Context, patientID uuid.UUID) (bool, error) {
	for _, a := range m.items {
		if a.PatientID == patientID && a.Status == AdmissionAdmitted {
			return true, nil
		}
	}
	return false, nil
}

type mockVitalsRepo struct {
	items []*Vitals
}

func (m *mockVitalsRepo) Create(_ context.Context, v *Vitals) error {
	v.ID = uuid.New()
	m.items = append(m.items, v)
	return nil
}

func (m *mockVitalsRepo) ListByAdmission(_ context.Context, admissionID uuid.UUID) ([]*Vitals, error) {
	var out []*Vitals
	for _, v := range m.items {
		if v.AdmissionID == admissionID {
			out = append(out, v)
		}
	}
	return out, nil
}

type mockNurseAssignments struct {
	assigned   map[uuid.UUID][]uuid.UUID
	discharged []uuid.UUID
}

func newMockNurseAssignments() *mockNurseAssignments {
	return &mockNurseAssignments{assigned: make(map[uuid.UUID][]uuid.UUID)}
}

func (m *mockNurseAssignments) Assign(_ context.Context, admissionID, patientID, nurseID uuid.UUID) error {
	for _, n := range m.assigned[admissionID] {
		if n == nurseID {
			return apperr.Conflict("nurse already assigned")
		}
	}
	m.assigned[admissionID] = append(m.assigned[admissionID], nurseID)
	return nil
}

func (m *mockNurseAssignments) DischargeByAdmission(_ context.Context, admissionID uuid.UUID) error {
	m.discharged = append(m.discharged, admissionID)
	delete(m.assigned, admissionID)
	return nil
}

type noopTx struct{}

func (noopTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc        *Service
	beds       *mockBedRepo
	admissions *mockAdmissionRepo
	vitals     *mockVitalsRepo
	nurses     *mockNurseAssignments
}

func newFixture() *fixture {
	f := &fixture{
		beds:       newMockBedRepo(),
		admissions: newMockAdmissionRepo(),
		vitals:     &mockVitalsRepo{},
		nurses:     newMockNurseAssignments(),
	}
	f.svc = NewService(f.beds, f.admissions, f.vitals, f.nurses, noopTx{})
	return f
}

func (f *fixture) vacantBed(t *testing.T) *Bed {
	t.Helper()
	b, err := f.svc.CreateBed(context.Background(), CreateBedInput{
		Number: "B-101", WardType: "general", Floor: 1,
		DailyRate: decimal.NewFromInt(2000),
	})
	if err != nil {
		t.Fatalf("CreateBed: %v", err)
	}
	return b
}

func (f *fixture) admit(t *testing.T, bedID uuid.UUID) *Admission {
	t.Helper()
	a, err := f.svc.Admit(context.Background(), AdmitInput{
		PatientID: uuid.New(), BedID: bedID, DoctorID: uuid.New(),
		AdmissionType: AdmitScheduled, Diagnosis: "observation",
	})
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	return a
}

// -- Tests --

func TestStayDays(t *testing.T) {
	tests := []struct {
		name      string
		admitted  string
		discharge string
		want      int
	}{
		{"pinned ceiling scenario", "2024-01-01T08:00:00Z", "2024-01-04T10:00:00Z", 4},
		{"exact three days", "2024-01-01T08:00:00Z", "2024-01-04T08:00:00Z", 3},
		{"same day", "2024-01-01T08:00:00Z", "2024-01-01T18:00:00Z", 1},
		{"zero duration", "2024-01-01T08:00:00Z", "2024-01-01T08:00:00Z", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admitted, _ := time.Parse(time.RFC3339, tt.admitted)
			discharged, _ := time.Parse(time.RFC3339, tt.discharge)
			if got := StayDays(admitted, discharged); got != tt.want {
				t.Errorf("StayDays = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAdmit(t *testing.T) {
	f := newFixture()
	bed := f.vacantBed(t)
	a := f.admit(t, bed.ID)

	if a.Status != AdmissionAdmitted {
		t.Errorf("status = %q, want admitted", a.Status)
	}
	got, _ := f.beds.GetByID(context.Background(), bed.ID)
	if got.Status != BedOccupied {
		t.Errorf("bed status = %q, want occupied", got.Status)
	}
	if got.CurrentPatientID == nil || *got.CurrentPatientID != a.PatientID {
		t.Error("bed does not reference the admitted patient")
	}
	if got.CurrentAdmissionID == nil || *got.CurrentAdmissionID != a.ID {
		t.Error("bed does not reference the admission")
	}
}

func TestAdmitRejectsDoubleBooking(t *testing.T) {
	f := newFixture()
	bed := f.vacantBed(t)
	f.admit(t, bed.ID)

	_, err := f.svc.Admit(context.Background(), AdmitInput{
		PatientID: uuid.New(), BedID: bed.ID, DoctorID: uuid.New(),
	})
	if !apperr.IsConflict(err) {
		t.Errorf("second admission into occupied bed: got %v, want conflict", err)
	}
}

func TestAdmitRejectsSecondActiveAdmission(t *testing.T) {
	f := newFixture()
	bed := f.vacantBed(t)
	a := f.admit(t, bed.ID)

	other, err := f.svc.CreateBed(context.Background(), CreateBedInput{
		Number: "B-102", WardType: "general", DailyRate: decimal.NewFromInt(2000),
	})
	if err != nil {
		t.Fatalf("CreateBed: %v", err)
	}
	_, err = f.svc.Admit(context.Background(), AdmitInput{
		PatientID: a.PatientID, BedID: other.ID, DoctorID: uuid.New(),
	})
	if !apperr.IsConflict(err) {
		t.Errorf("same patient twice: got %v, want conflict", err)
	}
}

func TestAdmitValidation(t *testing.T) {
	f := newFixture()
	bed := f.vacantBed(t)
	ctx := context.Background()

	_, err := f.svc.Admit(ctx, AdmitInput{BedID: bed.ID, DoctorID: uuid.New()})
	if !apperr.IsValidation(err) {
		t.Errorf("missing patient: got %v", err)
	}
	_, err = f.svc.Admit(ctx, AdmitInput{PatientID: uuid.New(), BedID: bed.ID})
	if !apperr.IsValidation(err) {
		t.Errorf("missing doctor: got %v", err)
	}
	_, err = f.svc.Admit(ctx, AdmitInput{
		PatientID: uuid.New(), BedID: bed.ID, DoctorID: uuid.New(),
		AdmissionType: "walk-in",
	})
	if !apperr.IsValidation(err) {
		t.Errorf("bad admission type: got %v", err)
	}
	_, err = f.svc.Admit(ctx, AdmitInput{
		PatientID: uuid.New(), BedID: uuid.New(), DoctorID: uuid.New(),
	})
	if !apperr.IsNotFound(err) {
		t.Errorf("unknown bed: got %v", err)
	}
}

func TestDischarge(t *testing.T) {
	f := newFixture()
	bed := f.vacantBed(t)
	a := f.admit(t, bed.ID)
	f.svc.AssignNurse(context.Background(), a.ID, uuid.New())

	summary := "stable at discharge"
	got, err := f.svc.Discharge(context.Background(), a.ID, DischargeInput{Summary: &summary})
	if err != nil {
		t.Fatalf("Discharge: %v", err)
	}
	if got.Status != AdmissionDischarged {
		t.Errorf("status = %q, want discharged", got.Status)
	}
	if got.DischargedAt == nil || got.StayDays < 1 {
		t.Errorf("discharged_at = %v, stay_days = %d", got.DischargedAt, got.StayDays)
	}

	freed, _ := f.beds.GetByID(context.Background(), bed.ID)
	if freed.Status != BedVacant || freed.CurrentPatientID != nil || freed.CurrentAdmissionID != nil {
		t.Errorf("bed not freed: %+v", freed)
	}
	if len(f.nurses.discharged) != 1 || f.nurses.discharged[0] != a.ID {
		t.Errorf("nurse assignments not retired: %v", f.nurses.discharged)
	}
}

func TestDischargeErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Discharge(ctx, uuid.New(), DischargeInput{})
	if !apperr.IsNotFound(err) {
		t.Errorf("unknown admission: got %v", err)
	}

	bed := f.vacantBed(t)
	a := f.admit(t, bed.ID)
	if _, err := f.svc.Discharge(ctx, a.ID, DischargeInput{}); err != nil {
		t.Fatalf("Discharge: %v", err)
	}
	_, err = f.svc.Discharge(ctx, a.ID, DischargeInput{})
	if !apperr.IsConflict(err) {
		t.Errorf("double discharge: got %v", err)
	}

	bed2, _ := f.svc.CreateBed(ctx, CreateBedInput{Number: "B-103", WardType: "icu", DailyRate: decimal.NewFromInt(9000)})
	a2 := f.admit(t, bed2.ID)
	_, err = f.svc.Discharge(ctx, a2.ID, DischargeInput{Status: "recovered"})
	if !apperr.IsValidation(err) {
		t.Errorf("bad terminal status: got %v", err)
	}
}

func TestDischargeAlternateTerminalStates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for _, status := range []string{AdmissionTransferred, AdmissionAbsconded, AdmissionDeceased} {
		bed, err := f.svc.CreateBed(ctx, CreateBedInput{
			Number: "T-" + status, WardType: "general", DailyRate: decimal.NewFromInt(1000),
		})
		if err != nil {
			t.Fatalf("CreateBed: %v", err)
		}
		a := f.admit(t, bed.ID)
		got, err := f.svc.Discharge(ctx, a.ID, DischargeInput{Status: status})
		if err != nil {
			t.Fatalf("Discharge(%s): %v", status, err)
		}
		if got.Status != status {
			t.Errorf("status = %q, want %q", got.Status, status)
		}
		freed, _ := f.beds.GetByID(ctx, bed.ID)
		if freed.Status != BedVacant {
			t.Errorf("bed after %s: %q, want vacant", status, freed.Status)
		}
	}
}

func TestAssignNurse(t *testing.T) {
	f := newFixture()
	bed := f.vacantBed(t)
	a := f.admit(t, bed.ID)
	nurseID := uuid.New()
	ctx := context.Background()

	if err := f.svc.AssignNurse(ctx, a.ID, nurseID); err != nil {
		t.Fatalf("AssignNurse: %v", err)
	}
	got, _ := f.beds.GetByID(ctx, bed.ID)
	if got.AssignedNurseID == nil || *got.AssignedNurseID != nurseID {
		t.Error("bed does not reference the assigned nurse")
	}

	err := f.svc.AssignNurse(ctx, a.ID, nurseID)
	if !apperr.IsConflict(err) {
		t.Errorf("duplicate active assignment: got %v, want conflict", err)
	}

	if err := f.svc.AssignNurse(ctx, a.ID, uuid.New()); err != nil {
		t.Errorf("second nurse on same admission: %v", err)
	}
}

func TestRecordVitals(t *testing.T) {
	f := newFixture()
	bed := f.vacantBed(t)
	a := f.admit(t, bed.ID)
	ctx := context.Background()

	temp := decimal.NewFromFloat(37.8)
	pulse := 84
	v, err := f.svc.RecordVitals(ctx, a.ID, nil, VitalsInput{
		TemperatureC: &temp, PulseRate: &pulse, Notes: "post-op check",
	})
	if err != nil {
		t.Fatalf("RecordVitals: %v", err)
	}
	if v.RecordedAt.IsZero() {
		t.Error("recorded_at not set")
	}

	list, err := f.svc.ListVitals(ctx, a.ID)
	if err != nil || len(list) != 1 {
		t.Errorf("ListVitals = %v, %v", list, err)
	}

	if _, err := f.svc.Discharge(ctx, a.ID, DischargeInput{}); err != nil {
		t.Fatalf("Discharge: %v", err)
	}
	_, err = f.svc.RecordVitals(ctx, a.ID, nil, VitalsInput{PulseRate: &pulse})
	if !apperr.IsConflict(err) {
		t.Errorf("vitals after discharge: got %v, want conflict", err)
	}

	_, err = f.svc.RecordVitals(ctx, uuid.New(), nil, VitalsInput{PulseRate: &pulse})
	if !apperr.IsNotFound(err) {
		t.Errorf("vitals for unknown admission: got %v", err)
	}
}

func TestSetBedStatus(t *testing.T) {
	f := newFixture()
	bed := f.vacantBed(t)
	ctx := context.Background()

	for _, status := range []string{BedReserved, BedMaintenance, BedCleaning, BedVacant} {
		if _, err := f.svc.SetBedStatus(ctx, bed.ID, status); err != nil {
			t.Errorf("SetBedStatus(%s): %v", status, err)
		}
	}

	_, err := f.svc.SetBedStatus(ctx, bed.ID, BedOccupied)
	if !apperr.IsConflict(err) {
		t.Errorf("manual occupy: got %v, want conflict", err)
	}

	f.admit(t, bed.ID)
	_, err = f.svc.SetBedStatus(ctx, bed.ID, BedMaintenance)
	if !apperr.IsConflict(err) {
		t.Errorf("status change on occupied bed: got %v, want conflict", err)
	}
}

func TestOccupancySummary(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	s, err := f.svc.OccupancySummary(ctx)
	if err != nil {
		t.Fatalf("OccupancySummary: %v", err)
	}
	if s.TotalBeds != 0 || s.OccupancyRate() != 0 {
		t.Errorf("empty census: %+v", s)
	}

	bed := f.vacantBed(t)
	f.svc.CreateBed(ctx, CreateBedInput{Number: "B-104", WardType: "icu", DailyRate: decimal.NewFromInt(9000)})
	f.admit(t, bed.ID)

	s, err = f.svc.OccupancySummary(ctx)
	if err != nil {
		t.Fatalf("OccupancySummary: %v", err)
	}
	if s.TotalBeds != 2 || s.Occupied != 1 || s.Vacant != 1 {
		t.Errorf("census = %+v", s)
	}
	if s.OccupancyRate() != 50 {
		t.Errorf("rate = %v, want 50", s.OccupancyRate())
	}
}
