package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/notesauth/internal/common"
	"github.com/dmitrijs2005/notesauth/internal/logging"
	"github.com/dmitrijs2005/notesauth/internal/server/auth"
	"github.com/dmitrijs2005/notesauth/internal/server/models"
)

// AccountResolver is satisfied by *IdentityResolver.
type AccountResolver interface {
	Resolve(ctx context.Context, a models.Assertion) (*models.Account, error)
}

// TokenIssuer is satisfied by *auth.SessionTokenIssuer.
type TokenIssuer interface {
	Issue(account *models.Account, extra ...string) (string, error)
}

// LoginResult is what a completed federated sign-in hands back to the
// transport layer.
type LoginResult struct {
	Account     *models.Account
	Principal   *auth.Principal
	Token       string
	RedirectURL string
}

// FederatedLoginService runs the post-authentication step of a federated
// sign-in: provision, issue a session, build the frontend redirect.
type FederatedLoginService struct {
	resolver    AccountResolver
	issuer      TokenIssuer
	frontendURL string
	logger      logging.Logger
}

func NewFederatedLoginService(resolver AccountResolver, issuer TokenIssuer, frontendURL string, logger logging.Logger) *FederatedLoginService {
	return &FederatedLoginService{
		resolver:    resolver,
		issuer:      issuer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger.With("module", "federated_login"),
	}
}

// OnLoginSuccess returns the result together with a context carrying the
// signed-in principal. An account created here stays even if a later step
// fails.
func (s *FederatedLoginService) OnLoginSuccess(ctx context.Context, a models.Assertion) (context.Context, *LoginResult, error) {
	if strings.TrimSpace(a.Email) == "" {
		return ctx, nil, fmt.Errorf("%w: email is required", common.ErrInvalidAssertion)
	}

	account, err := s.resolver.Resolve(ctx, a)
	if err != nil {
		return ctx, nil, err
	}

	token, err := s.issuer.Issue(account, auth.AuthorityFederated)
	if err != nil {
		s.logger.Error(ctx, "session token issue failed", "user_id", account.ID, "error", err)
		return ctx, nil, err
	}

	principal := &auth.Principal{
		Subject:     account.ID,
		Username:    account.UserName,
		Authorities: []string{string(account.Role.Name), auth.AuthorityFederated},
	}

	res := &LoginResult{
		Account:     account,
		Principal:   principal,
		Token:       token,
		RedirectURL: s.frontendURL + "/oauth2/redirect?token=" + url.QueryEscape(token),
	}

	s.logger.Info(ctx, "federated login", "user_id", account.ID, "provider", a.Provider)
	return auth.ContextWithPrincipal(ctx, principal), res, nil
}
