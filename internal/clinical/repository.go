package clinical

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrFormNotFound = errors.New("clinical form not found")

type Repository interface {
	GetMasterData(ctx context.Context) (*MasterData, error)
	GetFormByPatient(ctx context.Context, patientID uuid.UUID) (*Form, error)
	// SaveForm upserts the form and replaces its linked selections in one
	// transaction.
	SaveForm(ctx context.Context, form *Form) error
}
