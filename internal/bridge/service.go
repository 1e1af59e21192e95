package bridge

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sv2linux/sv2-bridge/internal/delivery"
	"github.com/sv2linux/sv2-bridge/pkg/callback"
	"github.com/sv2linux/sv2-bridge/pkg/common/logger"
	irepo "github.com/sv2linux/sv2-bridge/pkg/repositories/invocations"
)

// Service is the relay pipeline shared by the one-shot CLI path and the HTTP
// listener: extract the artifact, deliver it into the Wine prefix, record
// the outcome. One code path, one test surface.
type Service struct {
	writer *delivery.Writer
	repo   irepo.Repository
}

func NewService(writer *delivery.Writer, repo irepo.Repository) *Service {
	return &Service{writer: writer, repo: repo}
}

// Process runs one invocation to completion. Failures are typed (see
// pkg/callback and internal/delivery); nothing is written on extraction
// failure, and a delivery failure leaves the previous record in place.
func (s *Service) Process(ctx context.Context, inv callback.Invocation) (*callback.Artifact, error) {
	art, err := callback.Extract(inv)
	if err != nil {
		logger.Warn("extraction failed (%s): %v", OutcomeKind(err), err)
		s.record(ctx, inv, nil, err)
		return nil, err
	}

	if err := s.writer.Deliver(art); err != nil {
		logger.Error("delivery failed: %v", err)
		s.record(ctx, inv, art, err)
		return nil, err
	}

	logger.Info("auth code %s relayed to %s (origin=%s state=%s)",
		callback.SanitizeCode(art.Code), s.writer.CodePath(), inv.Origin, art.State)
	if art.Subject != "" {
		logger.Debug("id_token subject=%s", art.Subject)
	}
	s.record(ctx, inv, art, nil)
	return art, nil
}

func (s *Service) record(ctx context.Context, inv callback.Invocation, art *callback.Artifact, cause error) {
	if s.repo == nil {
		return
	}
	rec := &irepo.Record{
		ID:      uuid.NewString(),
		Origin:  string(inv.Origin),
		Outcome: OutcomeKind(cause),
	}
	if art != nil {
		rec.CodePrefix = callback.SanitizeCode(art.Code)
		rec.State = art.State
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		logger.Warn("recording invocation outcome: %v", err)
	}
}

// OutcomeKind maps a pipeline error to its stable outcome name, used in the
// log, the invocation store and the status endpoint.
func OutcomeKind(err error) string {
	var denial *callback.ProviderDenialError
	var write *delivery.Error
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &denial):
		return "ProviderDeniedAuthorization"
	case errors.As(err, &write):
		return "DeliveryWriteError"
	case errors.Is(err, callback.ErrInvalidInvocation):
		return "InvalidInvocation"
	case errors.Is(err, callback.ErrMissingAuthorizationCode):
		return "MissingAuthorizationCode"
	case errors.Is(err, callback.ErrMalformedCallbackURI):
		return "MalformedCallbackURI"
	default:
		return "InternalError"
	}
}
