// Package handler exposes the authorisation workflow over the Berlin Group
// style HTTP surface and renders failures in the regulator-defined TPP
// message envelope.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"xs2gate/internal/authorization/models"
	"xs2gate/internal/tppmessage"
	"xs2gate/pkg/domain"
	"xs2gate/pkg/platform/httputil"
	"xs2gate/pkg/requestcontext"
)

// Service defines the authorisation operations the handler exposes.
type Service interface {
	StartAuthorisation(ctx context.Context, kind domain.Kind, objectID domain.BusinessObjectID, psu domain.PsuIdData) (*models.Authorisation, error)
	GetScaStatus(ctx context.Context, kind domain.Kind, id domain.AuthorisationID) (domain.ScaStatus, error)
	UpdateAuthorisation(ctx context.Context, kind domain.Kind, id domain.AuthorisationID, req *models.UpdateRequest) (*models.UpdateResponse, error)
	ConfirmDecoupled(ctx context.Context, kind domain.Kind, id domain.AuthorisationID, psu domain.PsuIdData, authenticationData string) (*models.UpdateResponse, error)
}

// Handler wires authorisation endpoints to the orchestrator.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs the handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the authorisation endpoints. Each business-object kind has
// its own resource path; all four share the same handler logic.
func (h *Handler) Register(r chi.Router) {
	mount := func(prefix string, kind domain.Kind) {
		r.Route(prefix, func(r chi.Router) {
			r.Post("/", h.start(kind))
			r.Get("/{authorisationId}", h.status(kind))
			r.Put("/{authorisationId}", h.update(kind))
		})
	}
	mount("/v1/consents/{objectId}/authorisations", domain.KindAIS)
	mount("/v1/funds-confirmation-consents/{objectId}/authorisations", domain.KindPIIS)
	mount("/v1/payments/{objectId}/authorisations", domain.KindPIS)
	mount("/v1/payments/{objectId}/cancellation-authorisations", domain.KindPISCancellation)

	// Out-of-band confirmation callback for the decoupled approach. The
	// bank's push channel calls this, not the TPP.
	r.Post("/v1/decoupled/{kind}/{authorisationId}/confirmation", h.confirmDecoupled)
}

func (h *Handler) start(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		objectID, err := domain.ParseBusinessObjectID(chi.URLParam(r, "objectId"))
		if err != nil {
			h.writeError(w, r, kind, err)
			return
		}

		auth, err := h.service.StartAuthorisation(ctx, kind, objectID, psuFromHeaders(r))
		if err != nil {
			h.writeError(w, r, kind, err)
			return
		}

		h.logger.InfoContext(ctx, "authorisation started",
			"request_id", requestcontext.RequestID(ctx),
			"kind", kind.String(),
			"authorisation_id", auth.ID.String(),
		)
		httputil.WriteJSON(w, http.StatusCreated, fromAuthorisation(auth))
	}
}

func (h *Handler) status(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authID, err := domain.ParseAuthorisationID(chi.URLParam(r, "authorisationId"))
		if err != nil {
			h.writeError(w, r, kind, err)
			return
		}

		scaStatus, err := h.service.GetScaStatus(r.Context(), kind, authID)
		if err != nil {
			h.writeError(w, r, kind, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, statusResponse{ScaStatus: scaStatus.String()})
	}
}

func (h *Handler) update(kind domain.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		authID, err := domain.ParseAuthorisationID(chi.URLParam(r, "authorisationId"))
		if err != nil {
			h.writeError(w, r, kind, err)
			return
		}
		req, err := httputil.Decode[updateRequest](r)
		if err != nil {
			h.writeError(w, r, kind, err)
			return
		}

		resp, err := h.service.UpdateAuthorisation(ctx, kind, authID, req.toModel(psuFromHeaders(r)))
		if err != nil {
			h.writeError(w, r, kind, err)
			return
		}

		h.logger.InfoContext(ctx, "authorisation updated",
			"request_id", requestcontext.RequestID(ctx),
			"kind", kind.String(),
			"authorisation_id", authID.String(),
			"sca_status", resp.Status.String(),
		)
		httputil.WriteJSON(w, http.StatusOK, fromUpdateResponse(resp))
	}
}

func (h *Handler) confirmDecoupled(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	kind, err := domain.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	authID, err := domain.ParseAuthorisationID(chi.URLParam(r, "authorisationId"))
	if err != nil {
		h.writeError(w, r, kind, err)
		return
	}
	req, err := httputil.Decode[confirmationRequest](r)
	if err != nil {
		h.writeError(w, r, kind, err)
		return
	}

	resp, err := h.service.ConfirmDecoupled(ctx, kind, authID,
		domain.PsuIdData{PsuID: req.PsuID}, req.ScaAuthenticationData)
	if err != nil {
		h.writeError(w, r, kind, err)
		return
	}

	h.logger.InfoContext(ctx, "decoupled confirmation applied",
		"request_id", requestcontext.RequestID(ctx),
		"kind", kind.String(),
		"authorisation_id", authID.String(),
		"sca_status", resp.Status.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, fromUpdateResponse(resp))
}

// writeError renders every failure in the TPP message envelope. Stage
// failures carry their own error details; coded errors are mapped through
// the shared taxonomy.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, kind domain.Kind, err error) {
	ctx := r.Context()

	var scaErr *models.ScaError
	if errors.As(err, &scaErr) {
		status, envelope := tppmessage.Map(kind, scaErr.Info)
		code := tppmessage.CodeInternalServerError
		if scaErr.Info != nil {
			code = scaErr.Info.Code
		}
		h.logger.InfoContext(ctx, "authorisation failed",
			"request_id", requestcontext.RequestID(ctx),
			"kind", kind.String(),
			"code", string(code),
		)
		httputil.WriteJSON(w, status, envelope)
		return
	}

	status, envelope := tppmessage.FromDomainError(kind, err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "authorisation request failed",
			"request_id", requestcontext.RequestID(ctx),
			"kind", kind.String(),
			"error", err,
		)
	}
	httputil.WriteJSON(w, status, envelope)
}
