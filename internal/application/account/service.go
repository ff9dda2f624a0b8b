package account

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	domaccount "github.com/minimart/minimart/internal/domain/account"
	domloyalty "github.com/minimart/minimart/internal/domain/loyalty"
	"github.com/minimart/minimart/internal/domain/address"
	"github.com/minimart/minimart/internal/infrastructure/id"
	"github.com/minimart/minimart/internal/pkg/logging"
)

var ErrInvalidInput = errors.New("account: invalid input")

// Service owns account registration and the loyalty balance that comes with
// it. Admin-only operations elsewhere call Authorize first.
type Service struct {
	accounts domaccount.Repository
	loyalty  domloyalty.Repository
	audit    domaccount.ActionLogger
	ids      id.Generator
}

type Deps struct {
	Accounts domaccount.Repository
	Loyalty  domloyalty.Repository
	Audit    domaccount.ActionLogger
	IDs      id.Generator
}

func NewService(deps Deps) *Service {
	return &Service{
		accounts: deps.Accounts,
		loyalty:  deps.Loyalty,
		audit:    deps.Audit,
		ids:      deps.IDs,
	}
}

type RegisterInput struct {
	Name    string
	Email   string
	Phone   string
	Address address.Address
	Role    domaccount.Role
}

// Register creates an account. Clients get a zero-balance loyalty account in
// the same operation.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domaccount.Account, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	role := input.Role
	if role == "" {
		role = domaccount.RoleClient
	}

	acct, err := domaccount.New(s.ids.NewID(), input.Name, input.Email, input.Phone, input.Address, role)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Save(ctx, acct); err != nil {
		return nil, fmt.Errorf("account: save: %w", err)
	}

	if role == domaccount.RoleClient {
		if err := s.loyalty.Save(ctx, domloyalty.NewAccount(acct.ID)); err != nil {
			return nil, fmt.Errorf("account: open loyalty account: %w", err)
		}
	}

	logging.FromContext(ctx).Info("register_account_success",
		zap.String("account_id", acct.ID),
		zap.String("role", string(acct.Role)),
	)
	return acct, nil
}

type UpdateContactInput struct {
	AccountID string
	Phone     string
	Address   address.Address
}

func (s *Service) UpdateContact(ctx context.Context, input UpdateContactInput) (*domaccount.Account, error) {
	if input.AccountID == "" {
		return nil, fmt.Errorf("%w: account id is required", ErrInvalidInput)
	}

	acct, err := s.accounts.FindByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	acct.UpdateContact(input.Phone, input.Address)
	if err := s.accounts.Save(ctx, acct); err != nil {
		return nil, fmt.Errorf("account: save: %w", err)
	}
	return acct, nil
}

func (s *Service) Get(ctx context.Context, accountID string) (*domaccount.Account, error) {
	if accountID == "" {
		return nil, fmt.Errorf("%w: account id is required", ErrInvalidInput)
	}
	return s.accounts.FindByID(ctx, accountID)
}

// Authorize checks that the caller is an admin and records the action in the
// audit sink. The audit write is best-effort.
func (s *Service) Authorize(ctx context.Context, adminID, action string) error {
	if adminID == "" || action == "" {
		return fmt.Errorf("%w: admin id and action are required", ErrInvalidInput)
	}

	acct, err := s.accounts.FindByID(ctx, adminID)
	if err != nil {
		return err
	}
	if !acct.IsAdmin() {
		return domaccount.ErrNotAdmin
	}
	if s.audit != nil {
		s.audit.Log(ctx, adminID, action)
	}
	return nil
}

func (s *Service) LoyaltyBalance(ctx context.Context, clientID string) (*domloyalty.Account, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: client id is required", ErrInvalidInput)
	}
	return s.loyalty.FindByClient(ctx, clientID)
}

// RedeemPoints debits the client's loyalty balance. Redeeming more than the
// balance is rejected without changing it.
func (s *Service) RedeemPoints(ctx context.Context, clientID string, points int64) (*domloyalty.Account, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: client id is required", ErrInvalidInput)
	}

	acct, err := s.loyalty.FindByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if err := acct.Redeem(points); err != nil {
		return nil, err
	}
	if err := s.loyalty.Save(ctx, acct); err != nil {
		return nil, fmt.Errorf("account: save loyalty account: %w", err)
	}

	logging.FromContext(ctx).Info("redeem_points_success",
		zap.String("client_id", clientID),
		zap.Int64("points", points),
		zap.Int64("balance", acct.Points),
	)
	return acct, nil
}
