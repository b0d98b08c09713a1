package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

type mockRepo struct {
	items map[uuid.UUID]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*User)}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	m.items[u.ID] = u
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return u, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.items {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (m *mockRepo) Update(_ context.Context, u *User) error {
	m.items[u.ID] = u
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*User, int, error) {
	var out []*User
	for _, u := range m.items {
		out = append(out, u)
	}
	return out, len(out), nil
}

func newTestService() *Service {
	issuer := auth.NewTokenIssuer([]byte("test-secret-test-secret-test-secret!"), time.Hour)
	return NewService(newMockRepo(), issuer)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{
		Name: "Front Desk", Email: "Desk@Hospital.example", Password: "s3cret-pass", Role: "receptionist",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "desk@hospital.example" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	if u.PasswordHash == "s3cret-pass" || u.PasswordHash == "" {
		t.Error("password stored without hashing")
	}

	res, err := svc.Login(ctx, LoginInput{Email: "desk@hospital.example", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" {
		t.Error("no token issued")
	}
	if res.User.Role != "receptionist" {
		t.Errorf("role = %q", res.User.Role)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@b.c", Password: "longenough", Role: "admin"}},
		{"bad email", RegisterInput{Name: "X", Email: "nope", Password: "longenough", Role: "admin"}},
		{"short password", RegisterInput{Name: "X", Email: "a@b.c", Password: "short", Role: "admin"}},
		{"bad role", RegisterInput{Name: "X", Email: "a@b.c", Password: "longenough", Role: "superuser"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.in); !apperr.IsValidation(err) {
				t.Errorf("got %v, want validation error", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	in := RegisterInput{Name: "X", Email: "a@b.c", Password: "longenough", Role: "billing"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Register(ctx, in)
	if !apperr.IsConflict(err) {
		t.Errorf("duplicate email: got %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{
		Name: "X", Email: "a@b.c", Password: "longenough", Role: "lab",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err = svc.Login(ctx, LoginInput{Email: "a@b.c", Password: "wrong-pass"})
	if !apperr.IsValidation(err) {
		t.Errorf("wrong password: got %v", err)
	}
	_, err = svc.Login(ctx, LoginInput{Email: "ghost@b.c", Password: "longenough"})
	if !apperr.IsValidation(err) {
		t.Errorf("unknown email: got %v", err)
	}

	if _, err := svc.SetActive(ctx, u.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	_, err = svc.Login(ctx, LoginInput{Email: "a@b.c", Password: "longenough"})
	if !apperr.IsInvalidState(err) {
		t.Errorf("deactivated account: got %v", err)
	}
}
