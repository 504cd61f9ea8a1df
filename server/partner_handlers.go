package server

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	autherrors "github.com/jrsteele09/go-identity-dashboard/internal/errors"
	"github.com/jrsteele09/go-identity-dashboard/partners"
)

// IssuePartnerRequest is the body of POST /api/partners
type IssuePartnerRequest struct {
	Application string   `json:"application"`
	Scopes      []string `json:"scopes,omitempty"`
}

// IssuePartnerHandler mints a credential bundle, registers it and returns
// it. The secrets in the response are never shown again.
func (s *Server) IssuePartnerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		var req IssuePartnerRequest
		if err := decodeJSON(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		bundle, err := s.bundles.Generate(req.Application)
		if err != nil {
			var e *autherrors.Error
			if autherrors.As(err, &e) && e.Kind == autherrors.KindValidation {
				writeMessage(w, http.StatusBadRequest, e.Message)
				return
			}
			log.Err(err).Msg("generating partner bundle")
			writeMessage(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}

		partner, err := partners.NewPartner(bundle, claims.Subject, req.Scopes, s.nowTime())
		if err != nil {
			log.Err(err).Msg("hashing partner secrets")
			writeMessage(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
		if err := s.repos.Partners.Upsert(partner); err != nil {
			log.Err(err).Msg("storing partner")
			writeMessage(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}

		log.Info().Str("application", bundle.Application).Str("client_id", bundle.ClientID).Str("owner", claims.Subject).Msg("partner credentials issued")
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusCreated, bundle)
	}
}

// ListPartnersHandler pages through registered partners, secrets excluded.
func (s *Server) ListPartnersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit <= 0 || limit > 100 {
			limit = 100
		}

		list, err := s.repos.Partners.List(offset, limit)
		if err != nil {
			log.Err(err).Msg("listing partners")
			writeMessage(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
		if list == nil {
			list = []*partners.Partner{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}
