package clinical

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) MasterData(ctx context.Context) (*MasterData, error) {
	md, err := s.repo.GetMasterData(ctx)
	if err != nil {
		return nil, fmt.Errorf("load master data: %w", err)
	}
	return md, nil
}

func (s *Service) FormForPatient(ctx context.Context, patientID uuid.UUID) (*Form, error) {
	return s.repo.GetFormByPatient(ctx, patientID)
}

// Save upserts the patient's assessment. A new form gets an id and today's
// assessment date when the caller left them unset.
func (s *Service) Save(ctx context.Context, patientID uuid.UUID, form *Form) (*Form, error) {
	form.PatientID = patientID
	if form.ID == uuid.Nil {
		form.ID = uuid.New()
	}
	if form.AssessmentDate.IsZero() {
		form.AssessmentDate = time.Now()
	}

	if err := s.repo.SaveForm(ctx, form); err != nil {
		return nil, fmt.Errorf("save clinical form: %w", err)
	}
	return s.repo.GetFormByPatient(ctx, patientID)
}
