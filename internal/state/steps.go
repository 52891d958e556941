package state

import "github.com/Proton-105/lovemenu-bot/internal/domain"

// Order family.
const (
	StateCheckoutComment     State = "order.checkout_comment"
	StateCustomText          State = "order.custom_text"
	StateSpecialOrderComment State = "order.special_comment"
)

// Item family.
const (
	StateAddItemCategory    State = "item.add.category"
	StateAddItemSubcategory State = "item.add.subcategory"
	StateAddItemTitle       State = "item.add.title"
	StateAddItemDescription State = "item.add.description"
	StateAddItemMedia       State = "item.add.media"
	StateAddItemPrice       State = "item.add.price"
	StateAddItemCurrency    State = "item.add.currency"

	StateEditItemCategory State = "item.edit.category"
	StateEditItemSelect   State = "item.edit.select"
	StateEditItemMenu     State = "item.edit.menu"
	StateEditItemMedia    State = "item.edit.media"
)

// Special menu family.
const (
	StateSpecialMenuMedia       State = "special_menu.media"
	StateSpecialMenuDescription State = "special_menu.description"
	StateSpecialMenuCurrency    State = "special_menu.currency"
	StateSpecialMenuPrice       State = "special_menu.price"
	StateSpecialMenuConfirm     State = "special_menu.confirm"
)

// Debt family.
const (
	StateDebtUser     State = "debt.user"
	StateDebtCurrency State = "debt.currency"
	StateDebtAmount   State = "debt.amount"
)

func init() {
	register[CheckoutComment](StateCheckoutComment)
	register[CustomText](StateCustomText)
	register[SpecialOrderComment](StateSpecialOrderComment)

	register[AddItemCategory](StateAddItemCategory)
	register[AddItemSubcategory](StateAddItemSubcategory)
	register[AddItemTitle](StateAddItemTitle)
	register[AddItemDescription](StateAddItemDescription)
	register[AddItemMedia](StateAddItemMedia)
	register[AddItemPrice](StateAddItemPrice)
	register[AddItemCurrency](StateAddItemCurrency)

	register[EditItemCategory](StateEditItemCategory)
	register[EditItemSelect](StateEditItemSelect)
	register[EditItemMenu](StateEditItemMenu)
	register[EditItemMedia](StateEditItemMedia)

	register[SpecialMenuMedia](StateSpecialMenuMedia)
	register[SpecialMenuDescription](StateSpecialMenuDescription)
	register[SpecialMenuCurrency](StateSpecialMenuCurrency)
	register[SpecialMenuPrice](StateSpecialMenuPrice)
	register[SpecialMenuConfirm](StateSpecialMenuConfirm)

	register[DebtUser](StateDebtUser)
	register[DebtCurrency](StateDebtCurrency)
	register[DebtAmount](StateDebtAmount)
}

type orderStep struct{}

func (orderStep) Family() Family { return FamilyOrder }
func (orderStep) step()          {}

// CheckoutComment waits for the optional date and comment of a checkout.
type CheckoutComment struct{ orderStep }

func (CheckoutComment) State() State { return StateCheckoutComment }

// CustomText waits for the free text of a custom subcategory.
type CustomText struct {
	orderStep
	CategoryID    int64 `json:"category_id"`
	SubcategoryID int64 `json:"subcategory_id"`
}

func (CustomText) State() State { return StateCustomText }

// SpecialOrderComment waits for the comment attached to a special menu order.
type SpecialOrderComment struct {
	orderStep
	MenuID int64 `json:"menu_id"`
}

func (SpecialOrderComment) State() State { return StateSpecialOrderComment }

type itemStep struct{}

func (itemStep) Family() Family { return FamilyItem }
func (itemStep) step()          {}

type AddItemCategory struct{ itemStep }

func (AddItemCategory) State() State { return StateAddItemCategory }

type AddItemSubcategory struct {
	itemStep
	CategoryID int64 `json:"category_id"`
}

func (AddItemSubcategory) State() State { return StateAddItemSubcategory }

type AddItemTitle struct {
	itemStep
	CategoryID    int64  `json:"category_id"`
	SubcategoryID *int64 `json:"subcategory_id,omitempty"`
}

func (AddItemTitle) State() State { return StateAddItemTitle }

type AddItemDescription struct {
	AddItemTitle
	Title string `json:"title"`
}

func (AddItemDescription) State() State { return StateAddItemDescription }

type AddItemMedia struct {
	AddItemDescription
	Description string `json:"description"`
}

func (AddItemMedia) State() State { return StateAddItemMedia }

type AddItemPrice struct {
	AddItemMedia
	Media domain.Media `json:"media"`
}

func (AddItemPrice) State() State { return StateAddItemPrice }

// AddItemCurrency is the last step; everything but the currency is known.
type AddItemCurrency struct {
	AddItemPrice
	Price float64 `json:"price"`
}

func (AddItemCurrency) State() State { return StateAddItemCurrency }

// Draft returns the item collected so far.
func (s AddItemCurrency) Draft() domain.Item {
	return domain.Item{
		CategoryID:    s.CategoryID,
		SubcategoryID: s.SubcategoryID,
		Title:         s.Title,
		Description:   s.Description,
		Media:         s.Media,
		PriceAmount:   s.Price,
		IsActive:      true,
	}
}

type EditItemCategory struct{ itemStep }

func (EditItemCategory) State() State { return StateEditItemCategory }

type EditItemSelect struct {
	itemStep
	CategoryID int64 `json:"category_id"`
}

func (EditItemSelect) State() State { return StateEditItemSelect }

type EditItemMenu struct {
	itemStep
	CategoryID int64 `json:"category_id"`
	ItemID     int64 `json:"item_id"`
}

func (EditItemMenu) State() State { return StateEditItemMenu }

type EditItemMedia struct {
	itemStep
	CategoryID int64 `json:"category_id"`
	ItemID     int64 `json:"item_id"`
}

func (EditItemMedia) State() State { return StateEditItemMedia }

type specialMenuStep struct{}

func (specialMenuStep) Family() Family { return FamilySpecialMenu }
func (specialMenuStep) step()          {}

type SpecialMenuMedia struct{ specialMenuStep }

func (SpecialMenuMedia) State() State { return StateSpecialMenuMedia }

type SpecialMenuDescription struct {
	specialMenuStep
	Media domain.Media `json:"media"`
}

func (SpecialMenuDescription) State() State { return StateSpecialMenuDescription }

type SpecialMenuCurrency struct {
	specialMenuStep
	Media       domain.Media `json:"media"`
	Description string       `json:"description"`
}

func (SpecialMenuCurrency) State() State { return StateSpecialMenuCurrency }

type SpecialMenuPrice struct {
	specialMenuStep
	Media       domain.Media `json:"media"`
	Description string       `json:"description"`
	CurrencyID  int64        `json:"currency_id"`
}

func (SpecialMenuPrice) State() State { return StateSpecialMenuPrice }

// SpecialMenuConfirm holds a complete draft shown for review before sending.
type SpecialMenuConfirm struct {
	specialMenuStep
	Media       domain.Media `json:"media"`
	Description string       `json:"description"`
	Price       float64      `json:"price"`
	CurrencyID  *int64       `json:"currency_id,omitempty"`
}

func (SpecialMenuConfirm) State() State { return StateSpecialMenuConfirm }

// Draft returns the menu to publish.
func (s SpecialMenuConfirm) Draft() domain.SpecialMenu {
	return domain.SpecialMenu{
		Media:       s.Media,
		Description: s.Description,
		PriceAmount: s.Price,
		CurrencyID:  s.CurrencyID,
		IsActive:    true,
	}
}

type debtStep struct{}

func (debtStep) Family() Family { return FamilyDebt }
func (debtStep) step()          {}

type DebtUser struct{ debtStep }

func (DebtUser) State() State { return StateDebtUser }

// DebtOption is one entry of the debts snapshot taken when a debtor is selected.
type DebtOption struct {
	CurrencyID int64   `json:"currency_id"`
	Name       string  `json:"name"`
	Emoji      string  `json:"emoji"`
	Amount     float64 `json:"amount"`
}

// DebtCurrency offers the debtor's currencies. Selection is an index into Debts.
type DebtCurrency struct {
	debtStep
	TargetUserID int64        `json:"target_user_id"`
	Username     string       `json:"username"`
	Debts        []DebtOption `json:"debts"`
	OrderID      *int64       `json:"order_id,omitempty"`
}

func (DebtCurrency) State() State { return StateDebtCurrency }

type DebtAmount struct {
	debtStep
	TargetUserID int64      `json:"target_user_id"`
	Username     string     `json:"username"`
	Currency     DebtOption `json:"currency"`
	OrderID      *int64     `json:"order_id,omitempty"`
}

func (DebtAmount) State() State { return StateDebtAmount }
