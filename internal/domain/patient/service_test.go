package patient

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperr"
)

type mockRepo struct {
	items map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	m.items[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("patient not found")
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) GetByCode(_ context.Context, code string) (*Patient, error) {
	for _, p := range m.items {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, apperr.NotFound("patient not found")
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	m.items[p.ID] = p
	return nil
}

func (m *mockRepo) Search(_ context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range m.items {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) ||
			p.Phone == query || p.Code == query {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range m.items {
		out = append(out, p)
	}
	return out, len(out), nil
}

func newTestService() *Service {
	return NewService(newMockRepo())
}

func TestRegister(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.Register(ctx, Input{
		Name: "Sunita Rao", Gender: "female", Phone: "9876543210", BloodGroup: "o+",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !strings.HasPrefix(p.Code, "PAT") {
		t.Errorf("code = %q, want PAT prefix", p.Code)
	}
	if p.BloodGroup != "O+" {
		t.Errorf("blood group = %q, want normalized O+", p.BloodGroup)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		in   Input
	}{
		{"missing name", Input{Phone: "123"}},
		{"missing phone", Input{Name: "X"}},
		{"bad gender", Input{Name: "X", Phone: "1", Gender: "unknown"}},
		{"bad blood group", Input{Name: "X", Phone: "1", BloodGroup: "C+"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.in); !apperr.IsValidation(err) {
				t.Errorf("got %v, want validation error", err)
			}
		})
	}

	future := time.Now().Add(24 * time.Hour)
	_, err := svc.Register(ctx, Input{Name: "X", Phone: "1", DateOfBirth: &future})
	if !apperr.IsValidation(err) {
		t.Errorf("future dob: got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p, err := svc.Register(ctx, Input{Name: "Sunita Rao", Phone: "9876543210"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, err := svc.Update(ctx, p.ID, Input{Address: "12 MG Road, Pune", Allergies: "penicillin"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Address != "12 MG Road, Pune" || got.Name != "Sunita Rao" {
		t.Errorf("partial update wrong: %+v", got)
	}

	_, err = svc.Update(ctx, uuid.New(), Input{Name: "Y"})
	if !apperr.IsNotFound(err) {
		t.Errorf("unknown patient: got %v", err)
	}
}

func TestSearch(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	p1, _ := svc.Register(ctx, Input{Name: "Sunita Rao", Phone: "9876543210"})
	svc.Register(ctx, Input{Name: "Arjun Nair", Phone: "9123456780"})

	items, total, err := svc.Search(ctx, "sunita", 20, 0)
	if err != nil || total != 1 {
		t.Errorf("name search = %d, %v, want 1", total, err)
	}
	if len(items) == 1 && items[0].ID != p1.ID {
		t.Error("wrong patient matched")
	}

	_, total, _ = svc.Search(ctx, "9123456780", 20, 0)
	if total != 1 {
		t.Errorf("phone search = %d, want 1", total)
	}

	_, total, _ = svc.Search(ctx, "", 20, 0)
	if total != 2 {
		t.Errorf("empty query lists all: %d, want 2", total)
	}
}

func TestAge(t *testing.T) {
	dob := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	p := &Patient{DateOfBirth: &dob}

	now := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	if age := p.Age(now); age == nil || *age != 33 {
		t.Errorf("day before birthday: %v, want 33", age)
	}
	now = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if age := p.Age(now); age == nil || *age != 34 {
		t.Errorf("on birthday: %v, want 34", age)
	}

	lateDob := time.Date(1990, 12, 31, 0, 0, 0, 0, time.UTC)
	late := &Patient{DateOfBirth: &lateDob}
	if age := late.Age(now); age == nil || *age != 33 {
		t.Errorf("months before birthday: %v, want 33", age)
	}

	if age := (&Patient{}).Age(now); age != nil {
		t.Errorf("unknown dob: %v, want nil", age)
	}
}
