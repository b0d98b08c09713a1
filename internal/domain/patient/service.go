package patient

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/codes"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

type Input struct {
	Name             string     `json:"name"`
	Gender           string     `json:"gender"`
	DateOfBirth      *time.Time `json:"date_of_birth"`
	Phone            string     `json:"phone"`
	Email            string     `json:"email"`
	Address          string     `json:"address"`
	BloodGroup       string     `json:"blood_group"`
	Allergies        string     `json:"allergies"`
	EmergencyContact string     `json:"emergency_contact"`
}

func (in *Input) validate() error {
	if in.Name == "" {
		return apperr.Validation("patient name is required")
	}
	if in.Phone == "" {
		return apperr.Validation("phone is required")
	}
	if in.Gender != "" && !validGenders[in.Gender] {
		return apperr.Validation("invalid gender %q", in.Gender)
	}
	if in.BloodGroup != "" && !validBloodGroups[strings.ToUpper(in.BloodGroup)] {
		return apperr.Validation("invalid blood group %q", in.BloodGroup)
	}
	if in.DateOfBirth != nil && in.DateOfBirth.After(time.Now()) {
		return apperr.Validation("date of birth cannot be in the future")
	}
	return nil
}

func (s *Service) Register(ctx context.Context, in Input) (*Patient, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := &Patient{
		Code:             codes.New(codes.Patient),
		Name:             in.Name,
		Gender:           in.Gender,
		DateOfBirth:      in.DateOfBirth,
		Phone:            in.Phone,
		Email:            in.Email,
		Address:          in.Address,
		BloodGroup:       strings.ToUpper(in.BloodGroup),
		Allergies:        in.Allergies,
		EmergencyContact: in.EmergencyContact,
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Patient, error) {
	return s.patients.GetByCode(ctx, code)
}

// Exists verifies a patient reference for other modules.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) error {
	_, err := s.patients.GetByID(ctx, id)
	return err
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		p.Name = in.Name
	}
	if in.Gender != "" {
		if !validGenders[in.Gender] {
			return nil, apperr.Validation("invalid gender %q", in.Gender)
		}
		p.Gender = in.Gender
	}
	if in.DateOfBirth != nil {
		if in.DateOfBirth.After(time.Now()) {
			return nil, apperr.Validation("date of birth cannot be in the future")
		}
		p.DateOfBirth = in.DateOfBirth
	}
	if in.Phone != "" {
		p.Phone = in.Phone
	}
	if in.Email != "" {
		p.Email = in.Email
	}
	if in.Address != "" {
		p.Address = in.Address
	}
	if in.BloodGroup != "" {
		bg := strings.ToUpper(in.BloodGroup)
		if !validBloodGroups[bg] {
			return nil, apperr.Validation("invalid blood group %q", in.BloodGroup)
		}
		p.BloodGroup = bg
	}
	if in.Allergies != "" {
		p.Allergies = in.Allergies
	}
	if in.EmergencyContact != "" {
		p.EmergencyContact = in.EmergencyContact
	}
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Search matches by partial name, exact phone or exact code. An empty query
// lists all patients.
func (s *Service) Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.patients.List(ctx, limit, offset)
	}
	return s.patients.Search(ctx, query, limit, offset)
}
