package submit

import (
	"context"
	"fmt"

	"github.com/ErykKul/DataSync/internal/api"
	"github.com/ErykKul/DataSync/internal/logging"
)

// Storer is the part of api.Client used for submission.
type Storer interface {
	Store(ctx context.Context, req api.StoreRequest) (*api.StoreResponse, error)
}

// APISubmitter stores the plan through the comparison service. Template
// carries the credentials and repository coordinates; ID, PlanID and Data are
// filled from the plan.
type APISubmitter struct {
	Client   Storer
	Template api.StoreRequest
	Log      *logging.Logger

	// Response is the acknowledgement of the last successful Submit.
	Response *api.StoreResponse
}

func (s *APISubmitter) Submit(ctx context.Context, plan *Plan) error {
	if err := plan.Validate(); err != nil {
		return err
	}

	req := s.Template
	req.ID = plan.JobID
	req.PlanID = plan.ID
	req.Data = plan.Records

	res, err := s.Client.Store(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to submit plan %s: %w", plan.ID, err)
	}
	s.Response = res
	if s.Log != nil {
		s.Log.Info().Str("plan", plan.ID).Str("job", plan.JobID).Int("pending", len(plan.Pending())).Msg("plan submitted")
	}
	return nil
}
