// Package order turns carts into orders and records the resulting debts.
package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Proton-105/lovemenu-bot/internal/cart"
	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/repository"
	"github.com/Proton-105/lovemenu-bot/pkg/metrics"
)

// DefaultListLimit caps the admin orders list.
const DefaultListLimit = 20

var (
	ErrEmptyCart = errors.New("order: cart is empty")
	ErrNotFound  = errors.New("order: not found")
)

type Service struct {
	orders repository.OrderRepository
	carts  repository.CartRepository
	debts  repository.DebtRepository
	log    *slog.Logger
	now    func() time.Time
}

func NewService(orders repository.OrderRepository, carts repository.CartRepository, debts repository.DebtRepository, log *slog.Logger) *Service {
	return &Service{orders: orders, carts: carts, debts: debts, log: log, now: time.Now}
}

// EnsureNotEmpty fails with ErrEmptyCart when the user has nothing to check out.
func (s *Service) EnsureNotEmpty(ctx context.Context, userID int64) error {
	lines, err := s.carts.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("list cart: %w", err)
	}
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	return nil
}

// Checkout snapshots the cart into an order, adds the order's per-currency
// sums to the user's debts and clears the cart. Debts are touched only after
// the order is stored. A failed increment is logged and not rolled back.
func (s *Service) Checkout(ctx context.Context, userID int64, text string) (*domain.Order, error) {
	lines, err := s.carts.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	date, comment := ParseComment(text, s.now())
	created := &domain.Order{
		UserID:        userID,
		DateRequested: date,
		Comment:       comment,
		Status:        domain.OrderStatusPending,
		Items:         snapshot(lines),
	}

	if err := s.orders.Create(ctx, created); err != nil {
		metrics.RecordCheckout("failed")
		return nil, fmt.Errorf("create order: %w", err)
	}

	for _, total := range Totals(created.Items) {
		if err := s.debts.Increment(ctx, userID, total.CurrencyID, total.Amount); err != nil {
			s.log.Error("debt increment failed",
				slog.Int64("user_id", userID),
				slog.Int64("order_id", created.ID),
				slog.Int64("currency_id", total.CurrencyID),
				slog.Float64("amount", total.Amount),
				slog.Any("error", err),
			)
		}
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		s.log.Error("cart clear after checkout failed",
			slog.Int64("user_id", userID),
			slog.Int64("order_id", created.ID),
			slog.Any("error", err),
		)
	}

	metrics.RecordCheckout("ok")
	s.log.Info("order created",
		slog.Int64("user_id", userID),
		slog.Int64("order_id", created.ID),
		slog.Int("items", len(created.Items)),
	)

	return created, nil
}

// Totals sums the priced order lines per currency.
func Totals(items []domain.OrderItem) []cart.Total {
	return cart.Totals(items, func(i domain.OrderItem) (int64, float64) { return *i.CurrencyID, *i.PriceAmount })
}

// List returns the latest orders, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.orders.List(ctx, limit)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Order, error) {
	found, err := s.orders.ByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return found, err
}

func snapshot(lines []domain.CartItem) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.OrderItem{
			ItemID:      line.ItemID,
			CustomText:  line.CustomText,
			Title:       line.Title(),
			PriceAmount: line.PriceAmount,
			CurrencyID:  line.CurrencyID,
		})
	}
	return items
}
