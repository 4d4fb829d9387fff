package grpc

import (
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/simaogato/assetflow-backend/internal/domain"
	"github.com/simaogato/assetflow-backend/internal/i18n"
)

// Code returns the gRPC status code for a domain error
func Code(err error) codes.Code {
	var (
		ve  *domain.ValidationError
		fe  *domain.FetchError
		pe  *domain.PersistenceError
		ce  *domain.ComputationError
		pse *domain.PartialSaveError
	)

	switch {
	case errors.As(err, &ve):
		return codes.InvalidArgument
	case errors.As(err, &pse):
		return codes.Aborted
	case errors.As(err, &ce):
		return codes.Internal
	case errors.Is(err, domain.ErrUnauthenticated):
		return codes.Unauthenticated
	case errors.Is(err, domain.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, domain.ErrNoSession),
		errors.Is(err, domain.ErrSaveInProgress),
		errors.Is(err, domain.ErrUnsavedChanges),
		errors.Is(err, domain.ErrSessionActive):
		return codes.FailedPrecondition
	case errors.As(err, &fe), errors.As(err, &pe):
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// mapError converts domain errors to gRPC status errors with a localized message
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	msg := i18n.TranslateError(err)

	var pse *domain.PartialSaveError
	if errors.As(err, &pse) {
		ids := make([]string, 0, len(pse.Failed))
		for _, id := range pse.FailedIDs() {
			ids = append(ids, id.String())
		}
		msg += " (failed: " + strings.Join(ids, ", ") + ")"
	}

	return status.Error(Code(err), msg)
}
