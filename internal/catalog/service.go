// Package catalog serves categories, items and special menus, and validates
// admin mutations of the catalog.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Proton-105/lovemenu-bot/internal/domain"
	"github.com/Proton-105/lovemenu-bot/internal/repository"
)

const (
	// DefaultCurrencyName is matched case-insensitively as a prefix of the currency name.
	DefaultCurrencyName = "поцілун"
	// DatesCategory hides prices on item cards.
	DatesCategory = "Побачення"
	// RandomDateTitle marks the item that offers the date roulette.
	RandomDateTitle = "Рандомное для нас двоих"
)

var (
	ErrNotFound    = errors.New("catalog: not found")
	ErrInvalidItem = errors.New("catalog: invalid item")
)

type Service struct {
	repo     repository.CatalogRepository
	specials repository.SpecialMenuRepository
	log      *slog.Logger
}

func NewService(repo repository.CatalogRepository, specials repository.SpecialMenuRepository, log *slog.Logger) *Service {
	return &Service{repo: repo, specials: specials, log: log}
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) Category(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.repo.CategoryByID(ctx, id)
	return category, notFound(err, "category", id)
}

func (s *Service) Subcategories(ctx context.Context, categoryID int64) ([]domain.Subcategory, error) {
	return s.repo.Subcategories(ctx, categoryID)
}

func (s *Service) Subcategory(ctx context.Context, id int64) (*domain.Subcategory, error) {
	sub, err := s.repo.SubcategoryByID(ctx, id)
	return sub, notFound(err, "subcategory", id)
}

// Items lists the active items of a subcategory in display order.
func (s *Service) Items(ctx context.Context, subcategoryID int64) ([]domain.Item, error) {
	return s.repo.ItemsBySubcategory(ctx, subcategoryID)
}

func (s *Service) ItemsByCategory(ctx context.Context, categoryID int64) ([]domain.Item, error) {
	return s.repo.ItemsByCategory(ctx, categoryID)
}

func (s *Service) Item(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := s.repo.ItemByID(ctx, id)
	return item, notFound(err, "item", id)
}

func (s *Service) Currencies(ctx context.Context) ([]domain.Currency, error) {
	return s.repo.Currencies(ctx)
}

func (s *Service) Currency(ctx context.Context, id int64) (*domain.Currency, error) {
	currency, err := s.repo.CurrencyByID(ctx, id)
	return currency, notFound(err, "currency", id)
}

// DefaultCurrency returns the kisses currency used for custom lines and special menus.
func (s *Service) DefaultCurrency(ctx context.Context) (*domain.Currency, error) {
	currencies, err := s.repo.Currencies(ctx)
	if err != nil {
		return nil, err
	}

	for _, c := range currencies {
		if IsKisses(c) {
			c := c
			return &c, nil
		}
	}

	return nil, fmt.Errorf("default currency: %w", ErrNotFound)
}

// IsKisses reports whether c is the default currency.
func IsKisses(c domain.Currency) bool {
	return strings.HasPrefix(strings.ToLower(c.Name), DefaultCurrencyName)
}

// MatchCategory resolves a main menu button text to a category.
func (s *Service) MatchCategory(ctx context.Context, text string) (*domain.Category, bool, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, false, err
	}

	for _, c := range categories {
		if c.Matches(text) {
			c := c
			return &c, true, nil
		}
	}

	return nil, false, nil
}

// MatchSubcategory resolves a subcategory name typed or tapped by the user.
// Custom subcategories share a name across categories, so the first match wins.
func (s *Service) MatchSubcategory(ctx context.Context, text string) (*domain.Subcategory, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false, nil
	}

	subs, err := s.repo.AllSubcategories(ctx)
	if err != nil {
		return nil, false, err
	}

	for _, sub := range subs {
		if sub.Name == text {
			sub := sub
			return &sub, true, nil
		}
	}

	return nil, false, nil
}

// CreateItem validates the draft against the catalog and stores it.
func (s *Service) CreateItem(ctx context.Context, draft domain.Item) (*domain.Item, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Description = strings.TrimSpace(draft.Description)

	if draft.Title == "" {
		return nil, fmt.Errorf("%w: empty title", ErrInvalidItem)
	}
	if err := validatePrice(draft.PriceAmount); err != nil {
		return nil, err
	}
	if draft.PriceAmount > 0 && draft.CurrencyID == nil {
		return nil, fmt.Errorf("%w: currency is required for a priced item", ErrInvalidItem)
	}
	if draft.PriceAmount == 0 {
		draft.CurrencyID = nil
	}

	if _, err := s.Category(ctx, draft.CategoryID); err != nil {
		return nil, err
	}

	if draft.SubcategoryID != nil {
		sub, err := s.Subcategory(ctx, *draft.SubcategoryID)
		if err != nil {
			return nil, err
		}
		if sub.CategoryID != draft.CategoryID {
			return nil, fmt.Errorf("%w: subcategory %d is not in category %d", ErrInvalidItem, sub.ID, draft.CategoryID)
		}
	}

	if draft.CurrencyID != nil {
		if _, err := s.Currency(ctx, *draft.CurrencyID); err != nil {
			return nil, err
		}
	}

	draft.IsActive = true
	if err := s.repo.CreateItem(ctx, &draft); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.log.Info("item created",
		slog.Int64("item_id", draft.ID),
		slog.Int64("category_id", draft.CategoryID),
		slog.String("title", draft.Title),
	)

	return &draft, nil
}

// ReplaceMedia swaps the picture, animation or video of an item.
func (s *Service) ReplaceMedia(ctx context.Context, itemID int64, media domain.Media) (*domain.Item, error) {
	if media.IsZero() {
		return nil, fmt.Errorf("%w: empty media", ErrInvalidItem)
	}

	if err := s.repo.UpdateItemMedia(ctx, itemID, media); err != nil {
		return nil, notFound(err, "item", itemID)
	}

	s.log.Info("item media replaced", slog.Int64("item_id", itemID), slog.String("kind", string(media.Kind)))

	return s.Item(ctx, itemID)
}

// AdoptUpload records the Telegram file id of a URL that was just uploaded so
// later cards are sent by id.
func (s *Service) AdoptUpload(ctx context.Context, url, fileID string) error {
	if url == "" || fileID == "" {
		return nil
	}

	n, err := s.repo.AdoptFileID(ctx, url, fileID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Debug("item media file id stored", slog.String("url", url), slog.Int64("items", n))
	}
	return nil
}

// PublishSpecialMenu stores the draft as the only active special menu.
func (s *Service) PublishSpecialMenu(ctx context.Context, draft domain.SpecialMenu) (*domain.SpecialMenu, error) {
	if draft.Media.IsZero() {
		return nil, fmt.Errorf("%w: special menu needs media", ErrInvalidItem)
	}
	if err := validatePrice(draft.PriceAmount); err != nil {
		return nil, err
	}
	if draft.PriceAmount == 0 {
		draft.CurrencyID = nil
	}

	if err := s.specials.Publish(ctx, &draft); err != nil {
		return nil, fmt.Errorf("publish special menu: %w", err)
	}

	s.log.Info("special menu published", slog.Int64("menu_id", draft.ID), slog.Float64("price", draft.PriceAmount))

	return &draft, nil
}

func (s *Service) ActiveSpecialMenu(ctx context.Context) (*domain.SpecialMenu, error) {
	menu, err := s.specials.Active(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("active special menu: %w", ErrNotFound)
	}
	return menu, err
}

func (s *Service) SpecialMenu(ctx context.Context, id int64) (*domain.SpecialMenu, error) {
	menu, err := s.specials.ByID(ctx, id)
	return menu, notFound(err, "special menu", id)
}

// GalleryIndex clamps index into [0, total-1]; an empty gallery yields 0.
func GalleryIndex(index, total int) int {
	if total <= 0 || index < 0 {
		return 0
	}
	if index >= total {
		return total - 1
	}
	return index
}

// IsRandomDate reports whether the item offers the date roulette.
func IsRandomDate(item domain.Item) bool {
	return strings.TrimSpace(item.Title) == RandomDateTitle
}

// HidesPrice reports whether item cards of the category omit the price line.
func HidesPrice(category domain.Category) bool {
	return category.Name == DatesCategory
}

func notFound(err error, entity string, id int64) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
	}
	return err
}
