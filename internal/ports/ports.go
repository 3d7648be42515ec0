package ports

import (
	"context"
	"io"

	"github.com/paydesk/taxdecl/internal/domain"
)

// ComponentService is the persistence boundary as seen by the editing engine.
// GetComponent returns domain.ErrNoExistingData when nothing has been saved
// yet for the key; that is the "use defaults" path, not a failure.
type ComponentService interface {
	GetComponent(ctx context.Context, employeeID int64, taxYear string, kind domain.ComponentKind) (domain.NestedRecord, error)

	// SaveComponent persists the request and returns the canonical record as
	// stored. When req.ForceNewRevision is set the boundary closes the active
	// revision's window at req.EffectiveFrom and opens a new one.
	SaveComponent(ctx context.Context, req *domain.SaveRequest) (domain.NestedRecord, error)
}

// RevisionRepository defines the full revision-store operations implemented
// by the reference sqlite adapter and exposed over the HTTP API.
type RevisionRepository interface {
	ComponentService

	ActiveRevision(ctx context.Context, employeeID int64, taxYear string, kind domain.ComponentKind) (*domain.Revision, error)
	History(ctx context.Context, employeeID int64, taxYear string, kind domain.ComponentKind) ([]domain.Revision, error)
}

// StatementGenerator renders a declaration statement document.
type StatementGenerator interface {
	Generate(ctx context.Context, s *domain.Statement, w io.Writer) error
}
