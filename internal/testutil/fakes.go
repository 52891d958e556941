package testutil

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/Proton-105/lovemenu-bot/internal/domain"
)

// Store is an in-memory implementation of every repository interface.
// Use the accessor methods to obtain the typed views.
type Store struct {
	mu sync.Mutex

	seq int64

	CategoryRows    []domain.Category
	SubcategoryRows []domain.Subcategory
	Items           []domain.Item
	CurrencyRows    []domain.Currency
	SpecialMenus    []domain.SpecialMenu
	Users           map[int64]*domain.User
	CartLines       []domain.CartItem
	Orders          []domain.Order
	Debts           map[[2]int64]float64
	Payments        []domain.PaymentHistory

	// FailOrderCreate makes OrderRepo().Create fail with this error.
	FailOrderCreate error
}

// NewStore returns a store seeded with the base vocabulary: five currencies,
// four categories and their subcategories.
func NewStore() *Store {
	s := &Store{
		Users: make(map[int64]*domain.User),
		Debts: make(map[[2]int64]float64),
	}

	for _, c := range [][2]string{
		{"Поцілунки", "💋"}, {"Обійми", "🤗"}, {"Масаж попи", "💆"}, {"Увага", "👀"}, {"Хвилиночки ніжності", "💕"},
	} {
		s.CurrencyRows = append(s.CurrencyRows, domain.Currency{ID: s.next(), Name: c[0], Emoji: c[1]})
	}

	categories := map[string]int64{}
	for _, c := range [][2]string{
		{"Їжа", "🍽️"}, {"Побачення", "🎬"}, {"Приємності", "💝"}, {"Коли на відстані", "📱"},
	} {
		id := s.next()
		categories[c[0]] = id
		s.CategoryRows = append(s.CategoryRows, domain.Category{ID: id, Name: c[0], Emoji: c[1]})
	}

	for _, sc := range []struct {
		category, name string
		custom         bool
	}{
		{"Їжа", "Вибрати по фотографії", false},
		{"Побачення", "Рандомное для нас двоих", false},
		{"Приємності", "Масаж", false},
		{"Приємності", "Свій варіант", true},
		{"Коли на відстані", "Свій варіант", true},
	} {
		s.SubcategoryRows = append(s.SubcategoryRows, domain.Subcategory{
			ID: s.next(), CategoryID: categories[sc.category], Name: sc.name, IsCustom: sc.custom,
		})
	}

	return s
}

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

// Category returns the seeded category by name.
func (s *Store) Category(name string) domain.Category {
	for _, c := range s.CategoryRows {
		if c.Name == name {
			return c
		}
	}
	panic("testutil: unknown category " + name)
}

// Subcategory returns the seeded subcategory by category and name.
func (s *Store) Subcategory(category, name string) domain.Subcategory {
	categoryID := s.Category(category).ID
	for _, sc := range s.SubcategoryRows {
		if sc.CategoryID == categoryID && sc.Name == name {
			return sc
		}
	}
	panic("testutil: unknown subcategory " + name)
}

// Currency returns the seeded currency by name.
func (s *Store) Currency(name string) domain.Currency {
	for _, c := range s.CurrencyRows {
		if c.Name == name {
			return c
		}
	}
	panic("testutil: unknown currency " + name)
}

// AddItem inserts an active item and returns it with its id.
func (s *Store) AddItem(item domain.Item) domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = s.next()
	item.IsActive = true
	s.Items = append(s.Items, item)
	return item
}

// Debt returns the stored balance for a user and currency.
func (s *Store) Debt(userID, currencyID int64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Debts[[2]int64{userID, currencyID}]
}

func (s *Store) Catalog() *CatalogRepo      { return &CatalogRepo{s} }
func (s *Store) Specials() *SpecialMenuRepo { return &SpecialMenuRepo{s} }
func (s *Store) Carts() *CartRepo           { return &CartRepo{s} }
func (s *Store) OrderRepo() *OrderRepo      { return &OrderRepo{s} }
func (s *Store) DebtRepo() *DebtRepo        { return &DebtRepo{s} }
func (s *Store) UserRepo() *UserRepo        { return &UserRepo{s} }

type CatalogRepo struct{ s *Store }

func (r *CatalogRepo) Categories(context.Context) ([]domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]domain.Category(nil), r.s.CategoryRows...), nil
}

func (r *CatalogRepo) CategoryByID(_ context.Context, id int64) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.CategoryRows {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *CatalogRepo) Subcategories(_ context.Context, categoryID int64) ([]domain.Subcategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Subcategory
	for _, sc := range r.s.SubcategoryRows {
		if sc.CategoryID == categoryID {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (r *CatalogRepo) AllSubcategories(context.Context) ([]domain.Subcategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]domain.Subcategory(nil), r.s.SubcategoryRows...), nil
}

func (r *CatalogRepo) SubcategoryByID(_ context.Context, id int64) (*domain.Subcategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sc := range r.s.SubcategoryRows {
		if sc.ID == id {
			sc := sc
			return &sc, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *CatalogRepo) ItemsBySubcategory(_ context.Context, subcategoryID int64) ([]domain.Item, error) {
	return r.items(func(i domain.Item) bool { return i.SubcategoryID != nil && *i.SubcategoryID == subcategoryID }), nil
}

func (r *CatalogRepo) ItemsByCategory(_ context.Context, categoryID int64) ([]domain.Item, error) {
	return r.items(func(i domain.Item) bool { return i.CategoryID == categoryID }), nil
}

func (r *CatalogRepo) items(match func(domain.Item) bool) []domain.Item {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Item
	for _, i := range r.s.Items {
		if i.IsActive && match(i) {
			out = append(out, i)
		}
	}
	return out
}

func (r *CatalogRepo) ItemByID(_ context.Context, id int64) (*domain.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, i := range r.s.Items {
		if i.ID == id {
			i := i
			return &i, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *CatalogRepo) CreateItem(_ context.Context, item *domain.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item.ID = r.s.next()
	item.CreatedAt = time.Now()
	r.s.Items = append(r.s.Items, *item)
	return nil
}

func (r *CatalogRepo) UpdateItemMedia(_ context.Context, itemID int64, media domain.Media) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.Items {
		if r.s.Items[i].ID == itemID {
			r.s.Items[i].Media = media
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *CatalogRepo) AdoptFileID(_ context.Context, url, fileID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for i := range r.s.Items {
		if r.s.Items[i].Media.URL == url && r.s.Items[i].Media.FileID == "" {
			r.s.Items[i].Media.FileID = fileID
			n++
		}
	}
	return n, nil
}

func (r *CatalogRepo) Currencies(context.Context) ([]domain.Currency, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]domain.Currency(nil), r.s.CurrencyRows...), nil
}

func (r *CatalogRepo) CurrencyByID(_ context.Context, id int64) (*domain.Currency, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.CurrencyRows {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

type SpecialMenuRepo struct{ s *Store }

func (r *SpecialMenuRepo) Publish(_ context.Context, menu *domain.SpecialMenu) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.SpecialMenus {
		r.s.SpecialMenus[i].IsActive = false
	}
	menu.ID = r.s.next()
	menu.IsActive = true
	menu.CreatedAt = time.Now()
	r.s.SpecialMenus = append(r.s.SpecialMenus, *menu)
	return nil
}

func (r *SpecialMenuRepo) Active(context.Context) (*domain.SpecialMenu, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := len(r.s.SpecialMenus) - 1; i >= 0; i-- {
		if r.s.SpecialMenus[i].IsActive {
			m := r.s.SpecialMenus[i]
			return &m, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *SpecialMenuRepo) ByID(_ context.Context, id int64) (*domain.SpecialMenu, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.SpecialMenus {
		if m.ID == id {
			m := m
			return &m, nil
		}
	}
	return nil, sql.ErrNoRows
}

type CartRepo struct{ s *Store }

func (r *CartRepo) Add(_ context.Context, item *domain.CartItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item.ID = r.s.next()
	item.CreatedAt = time.Now()
	r.s.CartLines = append(r.s.CartLines, *item)
	return nil
}

func (r *CartRepo) List(_ context.Context, userID int64) ([]domain.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.CartItem
	for _, line := range r.s.CartLines {
		if line.UserID != userID {
			continue
		}
		if line.ItemID != nil {
			for _, i := range r.s.Items {
				if i.ID == *line.ItemID {
					line.ItemTitle = i.Title
				}
			}
		}
		out = append(out, line)
	}
	return out, nil
}

func (r *CartRepo) Remove(_ context.Context, userID, cartItemID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, line := range r.s.CartLines {
		if line.ID == cartItemID && line.UserID == userID {
			r.s.CartLines = append(r.s.CartLines[:i], r.s.CartLines[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *CartRepo) Clear(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.CartLines[:0]
	for _, line := range r.s.CartLines {
		if line.UserID != userID {
			kept = append(kept, line)
		}
	}
	r.s.CartLines = kept
	return nil
}

type OrderRepo struct{ s *Store }

func (r *OrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailOrderCreate != nil {
		return r.s.FailOrderCreate
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	order.ID = r.s.next()
	order.CreatedAt = time.Now()
	r.s.Orders = append(r.s.Orders, *order)
	return nil
}

func (r *OrderRepo) List(_ context.Context, limit int) ([]domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := append([]domain.Order(nil), r.s.Orders...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *OrderRepo) ByID(_ context.Context, id int64) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.Orders {
		if o.ID == id {
			o := o
			return &o, nil
		}
	}
	return nil, sql.ErrNoRows
}

type DebtRepo struct{ s *Store }

func (r *DebtRepo) Increment(_ context.Context, userID, currencyID int64, amount float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Debts[[2]int64{userID, currencyID}] += amount
	return nil
}

func (r *DebtRepo) Get(_ context.Context, userID, currencyID int64) (*domain.UserDebt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	amount, ok := r.s.Debts[[2]int64{userID, currencyID}]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &domain.UserDebt{UserID: userID, CurrencyID: currencyID, Amount: amount}, nil
}

func (r *DebtRepo) Set(_ context.Context, userID, currencyID int64, amount float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]int64{userID, currencyID}
	if _, ok := r.s.Debts[key]; !ok {
		return sql.ErrNoRows
	}
	r.s.Debts[key] = amount
	return nil
}

func (r *DebtRepo) ListByUser(_ context.Context, userID int64) ([]domain.UserDebt, error) {
	return r.list(func(d domain.UserDebt) bool { return d.UserID == userID }), nil
}

func (r *DebtRepo) ListPositive(context.Context) ([]domain.UserDebt, error) {
	return r.list(func(d domain.UserDebt) bool { return d.Amount > 0 }), nil
}

func (r *DebtRepo) list(match func(domain.UserDebt) bool) []domain.UserDebt {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.UserDebt
	for key, amount := range r.s.Debts {
		d := domain.UserDebt{UserID: key[0], CurrencyID: key[1], Amount: amount}
		if match(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].CurrencyID < out[j].CurrencyID
	})
	return out
}

func (r *DebtRepo) AddPayment(_ context.Context, payment *domain.PaymentHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	payment.ID = r.s.next()
	payment.CreatedAt = time.Now()
	r.s.Payments = append(r.s.Payments, *payment)
	return nil
}

type UserRepo struct{ s *Store }

func (r *UserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.Users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Users[user.UserID]; ok {
		return nil
	}
	user.CreatedAt = time.Now()
	cp := *user
	r.s.Users[user.UserID] = &cp
	return nil
}

func (r *UserRepo) UpdateProfile(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.Users[user.UserID]; ok {
		u.Username = user.Username
		u.FirstName = user.FirstName
	}
	return nil
}

func (r *UserRepo) MarkReturning(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.Users[id]; ok {
		u.IsFirstTime = false
	}
	return nil
}

func (r *UserRepo) List(context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.User, 0, len(r.s.Users))
	for _, u := range r.s.Users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
