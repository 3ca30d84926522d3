package httpapp

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/alphabot-ai/slashboard/internal/auth"
	"github.com/alphabot-ai/slashboard/internal/store"
)

type signedChallengeRequest struct {
	Alg       string `json:"alg" validate:"required"`
	PublicKey string `json:"public_key" validate:"required"`
	Challenge string `json:"challenge" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type challengeRequest struct {
	Alg string `json:"alg" validate:"required"`
}

type challengeResponse struct {
	Challenge string    `json:"challenge"`
	ExpiresAt time.Time `json:"expires_at"`
}

type createAccountRequest struct {
	signedChallengeRequest
	DisplayName string `json:"display_name" validate:"required,max=40"`
	Bio         string `json:"bio" validate:"max=2000"`
}

type tokenResponse struct {
	AccountID   int64     `json:"account_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (req signedChallengeRequest) signed() auth.SignedChallenge {
	return auth.SignedChallenge{
		Alg:       strings.TrimSpace(req.Alg),
		PublicKey: strings.TrimSpace(req.PublicKey),
		Challenge: strings.TrimSpace(req.Challenge),
		Signature: strings.TrimSpace(req.Signature),
	}
}

// handleAuthChallenge godoc
//
//	@Summary	Request a challenge
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		challengeRequest	true	"Signature algorithm"
//	@Success	200		{object}	challengeResponse
//	@Failure	400		{object}	errorResponse
//	@Router		/api/auth/challenge [post]
func (s *Server) handleAuthChallenge(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if !s.decode(w, r, &req) {
		return
	}
	challenge, err := s.auth.CreateChallenge(r.Context(), strings.TrimSpace(req.Alg))
	if err != nil {
		s.writeAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, challengeResponse{Challenge: challenge.Challenge, ExpiresAt: challenge.ExpiresAt})
}

// handleAuthVerify godoc
//
//	@Summary	Exchange a signed challenge for a token
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		signedChallengeRequest	true	"Signed challenge"
//	@Success	200		{object}	tokenResponse
//	@Failure	401		{object}	errorResponse
//	@Router		/api/auth/verify [post]
func (s *Server) handleAuthVerify(w http.ResponseWriter, r *http.Request) {
	var req signedChallengeRequest
	if !s.decode(w, r, &req) {
		return
	}
	token, account, err := s.auth.VerifyAndCreateToken(r.Context(), req.signed())
	if err != nil {
		s.writeAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccountID: account.ID, AccessToken: token.Token, ExpiresAt: token.ExpiresAt})
}

// handleCreateAccount godoc
//
//	@Summary	Register an account
//	@Tags		Accounts
//	@Accept		json
//	@Produce	json
//	@Param		request	body		createAccountRequest	true	"Account and signed challenge"
//	@Success	201		{object}	tokenResponse
//	@Failure	409		{object}	errorResponse	"Display name or key already registered"
//	@Router		/api/accounts [post]
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !s.decode(w, r, &req) {
		return
	}
	account, token, err := s.auth.Register(r.Context(),
		strings.TrimSpace(req.DisplayName), strings.TrimSpace(req.Bio), req.signed())
	if err != nil {
		s.writeAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{AccountID: account.ID, AccessToken: token.Token, ExpiresAt: token.ExpiresAt})
}

// writeAuthError maps a failed proof to 401 and a taken name or key to 409.
func (s *Server) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrDuplicateName):
		writeError(w, http.StatusConflict, errors.New("display name already taken"))
	case errors.Is(err, store.ErrDuplicateKey):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, auth.ErrUnsupportedAlg):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, auth.ErrInvalidSignature),
		errors.Is(err, auth.ErrChallengeExpired),
		errors.Is(err, auth.ErrAlgMismatch),
		errors.Is(err, auth.ErrUnknownKey),
		errors.Is(err, auth.ErrKeyRevoked):
		writeError(w, http.StatusUnauthorized, err)
	default:
		s.logger.Warn("auth failed", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusUnauthorized, errors.New("authentication failed"))
	}
}
