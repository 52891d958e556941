// Package ledger reads user debts and applies admin payments.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/repository"
	"github.com/Proton-105/lovemenu-bot/pkg/metrics"
)

var (
	ErrInvalidAmount = errors.New("ledger: invalid amount")
	ErrNoDebt        = errors.New("ledger: no such debt")
	ErrUserNotFound  = errors.New("ledger: user not found")
)

// Line is one nonzero balance with its currency resolved.
type Line struct {
	Currency domain.Currency
	Amount   float64
}

// Debtor is a user with at least one positive balance.
type Debtor struct {
	User  domain.User
	Debts []Line
	Total float64
}

// Payment is the outcome of an applied payment.
type Payment struct {
	Currency  domain.Currency
	Entered   float64
	Previous  float64
	Remaining float64
}

type Service struct {
	debts   repository.DebtRepository
	users   repository.UserRepository
	catalog repository.CatalogRepository
	log     *slog.Logger
}

func NewService(debts repository.DebtRepository, users repository.UserRepository, catalog repository.CatalogRepository, log *slog.Logger) *Service {
	return &Service{debts: debts, users: users, catalog: catalog, log: log}
}

// Debts returns the user's nonzero balances ordered by currency id.
func (s *Service) Debts(ctx context.Context, userID int64) ([]Line, error) {
	debts, err := s.debts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}

	currencies, err := s.currencies(ctx)
	if err != nil {
		return nil, err
	}

	return toLines(debts, currencies), nil
}

// Debtors lists users with positive debts, largest total first.
func (s *Service) Debtors(ctx context.Context) ([]Debtor, error) {
	debts, err := s.debts.ListPositive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list positive debts: %w", err)
	}

	currencies, err := s.currencies(ctx)
	if err != nil {
		return nil, err
	}

	byUser := make(map[int64][]domain.UserDebt)
	order := make([]int64, 0)
	for _, d := range debts {
		if _, seen := byUser[d.UserID]; !seen {
			order = append(order, d.UserID)
		}
		byUser[d.UserID] = append(byUser[d.UserID], d)
	}

	debtors := make([]Debtor, 0, len(order))
	for _, userID := range order {
		user, err := s.user(ctx, userID)
		if errors.Is(err, ErrUserNotFound) {
			user = &domain.User{UserID: userID}
		} else if err != nil {
			return nil, err
		}

		lines := toLines(byUser[userID], currencies)
		debtor := Debtor{User: *user, Debts: lines}
		for _, l := range lines {
			debtor.Total += l.Amount
		}
		debtors = append(debtors, debtor)
	}

	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].Total > debtors[j].Total })

	return debtors, nil
}

// Pay reduces a debt by amount, never below zero, and logs the entered
// amount in the payment history even when it exceeds the balance.
func (s *Service) Pay(ctx context.Context, userID, currencyID int64, amount float64, orderID *int64) (*Payment, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, ErrInvalidAmount
	}

	current, err := s.debts.Get(ctx, userID, currencyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoDebt
	}
	if err != nil {
		return nil, fmt.Errorf("get debt: %w", err)
	}

	remaining := math.Max(0, current.Amount-amount)
	if err := s.debts.Set(ctx, userID, currencyID, remaining); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoDebt
		}
		return nil, fmt.Errorf("set debt: %w", err)
	}

	record := &domain.PaymentHistory{UserID: userID, CurrencyID: currencyID, Amount: amount, OrderID: orderID}
	if err := s.debts.AddPayment(ctx, record); err != nil {
		s.log.Error("payment history write failed",
			slog.Int64("user_id", userID),
			slog.Int64("currency_id", currencyID),
			slog.Any("error", err),
		)
	}

	currency := domain.Currency{ID: currencyID}
	if c, err := s.catalog.CurrencyByID(ctx, currencyID); err == nil {
		currency = *c
	}

	metrics.RecordPayment(currency.Name)
	s.log.Info("debt paid",
		slog.Int64("user_id", userID),
		slog.Int64("currency_id", currencyID),
		slog.Float64("entered", amount),
		slog.Float64("remaining", remaining),
	)

	return &Payment{Currency: currency, Entered: amount, Previous: current.Amount, Remaining: remaining}, nil
}

// User returns a known user for the payment wizard.
func (s *Service) User(ctx context.Context, userID int64) (*domain.User, error) {
	return s.user(ctx, userID)
}

func (s *Service) user(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", userID, err)
	}
	return user, nil
}

func (s *Service) currencies(ctx context.Context) (map[int64]domain.Currency, error) {
	list, err := s.catalog.Currencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}

	out := make(map[int64]domain.Currency, len(list))
	for _, c := range list {
		out[c.ID] = c
	}
	return out, nil
}

func toLines(debts []domain.UserDebt, currencies map[int64]domain.Currency) []Line {
	lines := make([]Line, 0, len(debts))
	for _, d := range debts {
		if d.Amount == 0 {
			continue
		}
		currency, ok := currencies[d.CurrencyID]
		if !ok {
			currency = domain.Currency{ID: d.CurrencyID, Name: strconv.FormatInt(d.CurrencyID, 10)}
		}
		lines = append(lines, Line{Currency: currency, Amount: d.Amount})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Currency.ID < lines[j].Currency.ID })
	return lines
}

// ParseAmount reads a positive payment amount. Characters other than digits
// and separators are dropped, so "5 💋" is 5.
func ParseAmount(text string) (float64, error) {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == ',':
			b.WriteRune('.')
		}
	}

	amount, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || amount <= 0 || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	return amount, nil
}
