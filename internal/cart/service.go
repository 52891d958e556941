// Package cart keeps the per-user list of pending lines. Prices are
// snapshotted when a line is added and never recomputed.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Proton-105/lovemenu-bot/internal/catalog"
	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/repository"
)

var (
	ErrEmptyText    = errors.New("cart: empty text")
	ErrLineNotFound = errors.New("cart: line not found")
)

// customPrices maps a category name to the price of a free-text line, in
// units of the default currency. Other categories add unpriced lines.
var customPrices = map[string]float64{
	"Приємності":       6,
	"Коли на відстані": 3,
}

// Total is the sum of priced lines in one currency.
type Total struct {
	CurrencyID int64
	Amount     float64
}

type Service struct {
	repo    repository.CartRepository
	catalog *catalog.Service
	log     *slog.Logger
}

func NewService(repo repository.CartRepository, catalogSvc *catalog.Service, log *slog.Logger) *Service {
	return &Service{repo: repo, catalog: catalogSvc, log: log}
}

// AddItem adds a catalog item with its current price.
func (s *Service) AddItem(ctx context.Context, userID, itemID int64) (*domain.CartItem, error) {
	item, err := s.catalog.Item(ctx, itemID)
	if err != nil {
		return nil, err
	}

	line := snapshot(userID, item)
	if err := s.repo.Add(ctx, line); err != nil {
		return nil, fmt.Errorf("add item %d: %w", itemID, err)
	}

	s.log.Info("cart line added", slog.Int64("user_id", userID), slog.Int64("item_id", itemID))

	return line, nil
}

// AddIdea adds the random date item with the chosen idea as its text.
func (s *Service) AddIdea(ctx context.Context, userID, itemID int64, idea string) (*domain.CartItem, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return nil, ErrEmptyText
	}

	item, err := s.catalog.Item(ctx, itemID)
	if err != nil {
		return nil, err
	}

	line := snapshot(userID, item)
	line.CustomText = idea
	if err := s.repo.Add(ctx, line); err != nil {
		return nil, fmt.Errorf("add idea for item %d: %w", itemID, err)
	}

	s.log.Info("cart idea added", slog.Int64("user_id", userID), slog.Int64("item_id", itemID))

	return line, nil
}

// AddCustom adds a free-text line priced by its category.
func (s *Service) AddCustom(ctx context.Context, userID, categoryID int64, text string) (*domain.CartItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	category, err := s.catalog.Category(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	line := &domain.CartItem{UserID: userID, CustomText: text}
	if price, ok := CustomPrice(category.Name); ok {
		currency, err := s.catalog.DefaultCurrency(ctx)
		if err != nil {
			return nil, err
		}
		line.PriceAmount = &price
		line.CurrencyID = &currency.ID
	}

	if err := s.repo.Add(ctx, line); err != nil {
		return nil, fmt.Errorf("add custom line: %w", err)
	}

	s.log.Info("cart custom line added",
		slog.Int64("user_id", userID),
		slog.String("category", category.Name),
		slog.Bool("priced", line.Priced()),
	)

	return line, nil
}

// CustomPrice returns the price of a free-text line in the category.
func CustomPrice(categoryName string) (float64, bool) {
	price, ok := customPrices[categoryName]
	return price, ok
}

func (s *Service) Lines(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID, lineID int64) error {
	removed, err := s.repo.Remove(ctx, userID, lineID)
	if err != nil {
		return fmt.Errorf("remove line %d: %w", lineID, err)
	}
	if !removed {
		return ErrLineNotFound
	}
	return nil
}

// Clear drops every line of the user.
func (s *Service) Clear(ctx context.Context, userID int64) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.log.Info("cart cleared", slog.Int64("user_id", userID))
	return nil
}

// Totals sums priced lines per currency, ordered by currency id.
func Totals[T interface{ Priced() bool }](lines []T, price func(T) (int64, float64)) []Total {
	sums := make(map[int64]float64)
	for _, line := range lines {
		if !line.Priced() {
			continue
		}
		currencyID, amount := price(line)
		sums[currencyID] += amount
	}

	out := make([]Total, 0, len(sums))
	for currencyID, amount := range sums {
		out = append(out, Total{CurrencyID: currencyID, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CurrencyID < out[j].CurrencyID })

	return out
}

// LineTotals is Totals over cart lines.
func LineTotals(lines []domain.CartItem) []Total {
	return Totals(lines, func(l domain.CartItem) (int64, float64) { return *l.CurrencyID, *l.PriceAmount })
}

func snapshot(userID int64, item *domain.Item) *domain.CartItem {
	id := item.ID
	line := &domain.CartItem{UserID: userID, ItemID: &id, ItemTitle: item.Title}
	if item.PriceAmount > 0 && item.CurrencyID != nil {
		price := item.PriceAmount
		currencyID := *item.CurrencyID
		line.PriceAmount = &price
		line.CurrencyID = &currencyID
	}
	return line
}
