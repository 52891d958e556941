package callback

// Customer actions.
const (
	KindCategory           Kind = "cat"
	KindSubcategory        Kind = "sub"
	KindGallery            Kind = "gal"
	KindGalleryInfo        Kind = "gali"
	KindBackToSubcategory  Kind = "bsub"
	KindAddToCart          Kind = "add"
	KindSpin               Kind = "spin"
	KindAddIdea            Kind = "addr"
	KindShowCart           Kind = "cart"
	KindShowAccount        Kind = "acct"
	KindRemoveCartLine     Kind = "rm"
	KindClearCart          Kind = "clr"
	KindCheckout           Kind = "chk"
	KindCancelOrder        Kind = "cancel_order"
	KindOrderSpecialMenu   Kind = "osm"
	KindCancelSpecialOrder Kind = "cancel_special_order"
	KindBackToMenu         Kind = "back_to_menu"
	KindCancelForm         Kind = "cancel_form"
)

// Admin actions.
const (
	KindAdminAddItem          Kind = "a_add"
	KindAdminEditItem         Kind = "a_edit"
	KindAdminOrders           Kind = "a_ord"
	KindAdminOrder            Kind = "a_od"
	KindAdminOrderPay         Kind = "a_op"
	KindAdminPayDebt          Kind = "a_pay"
	KindAdminDebtor           Kind = "a_du"
	KindAdminDebtCurrency     Kind = "a_dc"
	KindAdminSpecialMenu      Kind = "a_sm"
	KindAdminSpecialKisses    Kind = "a_smk"
	KindAdminSpecialGift      Kind = "a_smg"
	KindAdminSpecialSend      Kind = "a_sms"
	KindAdminPickCategory     Kind = "a_cat"
	KindAdminPickSubcategory  Kind = "a_sub"
	KindAdminPickCurrency     Kind = "a_cur"
	KindAdminEditCategory     Kind = "a_ecat"
	KindAdminEditSelect       Kind = "a_eitem"
	KindAdminEditMedia        Kind = "a_emed"
	KindAdminBack             Kind = "a_back"
	KindAdminPanel            Kind = "a_menu"
	KindAdminCancel           Kind = "admin_cancel"
)

func init() {
	registerID(KindCategory, func(id int64) Action { return ShowCategory{CategoryID: id} })
	registerID(KindSubcategory, func(id int64) Action { return ShowSubcategory{SubcategoryID: id} })
	registerPair(KindGallery, func(sub, idx int64) Action { return GalleryPage{SubcategoryID: sub, Index: int(idx)} })
	registerSimple(GalleryInfo{})
	registerID(KindBackToSubcategory, func(id int64) Action { return BackToSubcategory{CategoryID: id} })
	registerID(KindAddToCart, func(id int64) Action { return AddToCart{ItemID: id} })
	registerID(KindSpin, func(id int64) Action { return Spin{ItemID: id} })
	registerPair(KindAddIdea, func(item, idea int64) Action { return AddIdea{ItemID: item, Idea: int(idea)} })
	registerSimple(ShowCart{})
	registerSimple(ShowAccount{})
	registerID(KindRemoveCartLine, func(id int64) Action { return RemoveCartLine{LineID: id} })
	registerSimple(ClearCart{})
	registerSimple(Checkout{})
	registerSimple(CancelOrder{})
	registerID(KindOrderSpecialMenu, func(id int64) Action { return OrderSpecialMenu{MenuID: id} })
	registerSimple(CancelSpecialOrder{})
	registerSimple(BackToMenu{})
	registerSimple(CancelForm{})

	registerSimple(AdminAddItem{})
	registerSimple(AdminEditItem{})
	registerSimple(AdminOrders{})
	registerID(KindAdminOrder, func(id int64) Action { return AdminOrder{OrderID: id} })
	registerID(KindAdminOrderPay, func(id int64) Action { return AdminOrderPay{OrderID: id} })
	registerSimple(AdminPayDebt{})
	registerID(KindAdminDebtor, func(id int64) Action { return AdminDebtor{UserID: id} })
	registerPair(KindAdminDebtCurrency, func(user, idx int64) Action { return AdminDebtCurrency{UserID: user, Index: int(idx)} })
	registerSimple(AdminSpecialMenu{})
	registerSimple(AdminSpecialKisses{})
	registerSimple(AdminSpecialGift{})
	registerSimple(AdminSpecialSend{})
	registerID(KindAdminPickCategory, func(id int64) Action { return AdminPickCategory{CategoryID: id} })
	registerID(KindAdminPickSubcategory, func(id int64) Action { return AdminPickSubcategory{SubcategoryID: id} })
	registerID(KindAdminPickCurrency, func(id int64) Action { return AdminPickCurrency{CurrencyID: id} })
	registerID(KindAdminEditCategory, func(id int64) Action { return AdminEditCategory{CategoryID: id} })
	registerID(KindAdminEditSelect, func(id int64) Action { return AdminEditSelect{ItemID: id} })
	registerID(KindAdminEditMedia, func(id int64) Action { return AdminEditMedia{ItemID: id} })
	registerSimple(AdminBack{})
	registerSimple(AdminPanel{})
	registerSimple(AdminCancel{})
}

type none struct{}

func (none) fields() []string { return nil }

type ShowCategory struct{ CategoryID int64 }

func (ShowCategory) Kind() Kind         { return KindCategory }
func (a ShowCategory) fields() []string { return []string{itoa(a.CategoryID)} }

type ShowSubcategory struct{ SubcategoryID int64 }

func (ShowSubcategory) Kind() Kind         { return KindSubcategory }
func (a ShowSubcategory) fields() []string { return []string{itoa(a.SubcategoryID)} }

// GalleryPage shows the item at Index of a subcategory gallery.
type GalleryPage struct {
	SubcategoryID int64
	Index         int
}

func (GalleryPage) Kind() Kind { return KindGallery }
func (a GalleryPage) fields() []string {
	return []string{itoa(a.SubcategoryID), itoa(int64(a.Index))}
}

// GalleryInfo is the inert "i/N" button.
type GalleryInfo struct{ none }

func (GalleryInfo) Kind() Kind { return KindGalleryInfo }

// BackToSubcategory returns from an item card to the subcategory list.
type BackToSubcategory struct{ CategoryID int64 }

func (BackToSubcategory) Kind() Kind         { return KindBackToSubcategory }
func (a BackToSubcategory) fields() []string { return []string{itoa(a.CategoryID)} }

type AddToCart struct{ ItemID int64 }

func (AddToCart) Kind() Kind         { return KindAddToCart }
func (a AddToCart) fields() []string { return []string{itoa(a.ItemID)} }

type Spin struct{ ItemID int64 }

func (Spin) Kind() Kind         { return KindSpin }
func (a Spin) fields() []string { return []string{itoa(a.ItemID)} }

// AddIdea adds an item with the date idea at index Idea.
type AddIdea struct {
	ItemID int64
	Idea   int
}

func (AddIdea) Kind() Kind         { return KindAddIdea }
func (a AddIdea) fields() []string { return []string{itoa(a.ItemID), itoa(int64(a.Idea))} }

type ShowCart struct{ none }

func (ShowCart) Kind() Kind { return KindShowCart }

type ShowAccount struct{ none }

func (ShowAccount) Kind() Kind { return KindShowAccount }

type RemoveCartLine struct{ LineID int64 }

func (RemoveCartLine) Kind() Kind         { return KindRemoveCartLine }
func (a RemoveCartLine) fields() []string { return []string{itoa(a.LineID)} }

type ClearCart struct{ none }

func (ClearCart) Kind() Kind { return KindClearCart }

type Checkout struct{ none }

func (Checkout) Kind() Kind { return KindCheckout }

type CancelOrder struct{ none }

func (CancelOrder) Kind() Kind { return KindCancelOrder }

type OrderSpecialMenu struct{ MenuID int64 }

func (OrderSpecialMenu) Kind() Kind         { return KindOrderSpecialMenu }
func (a OrderSpecialMenu) fields() []string { return []string{itoa(a.MenuID)} }

type CancelSpecialOrder struct{ none }

func (CancelSpecialOrder) Kind() Kind { return KindCancelSpecialOrder }

type BackToMenu struct{ none }

func (BackToMenu) Kind() Kind { return KindBackToMenu }

type CancelForm struct{ none }

func (CancelForm) Kind() Kind { return KindCancelForm }

type AdminAddItem struct{ none }

func (AdminAddItem) Kind() Kind { return KindAdminAddItem }

type AdminEditItem struct{ none }

func (AdminEditItem) Kind() Kind { return KindAdminEditItem }

type AdminOrders struct{ none }

func (AdminOrders) Kind() Kind { return KindAdminOrders }

type AdminOrder struct{ OrderID int64 }

func (AdminOrder) Kind() Kind         { return KindAdminOrder }
func (a AdminOrder) fields() []string { return []string{itoa(a.OrderID)} }

// AdminOrderPay starts the pay-debt wizard for the owner of an order.
type AdminOrderPay struct{ OrderID int64 }

func (AdminOrderPay) Kind() Kind         { return KindAdminOrderPay }
func (a AdminOrderPay) fields() []string { return []string{itoa(a.OrderID)} }

type AdminPayDebt struct{ none }

func (AdminPayDebt) Kind() Kind { return KindAdminPayDebt }

type AdminDebtor struct{ UserID int64 }

func (AdminDebtor) Kind() Kind         { return KindAdminDebtor }
func (a AdminDebtor) fields() []string { return []string{itoa(a.UserID)} }

// AdminDebtCurrency selects a debt by its index in the snapshot shown to the admin.
type AdminDebtCurrency struct {
	UserID int64
	Index  int
}

func (AdminDebtCurrency) Kind() Kind { return KindAdminDebtCurrency }
func (a AdminDebtCurrency) fields() []string {
	return []string{itoa(a.UserID), itoa(int64(a.Index))}
}

type AdminSpecialMenu struct{ none }

func (AdminSpecialMenu) Kind() Kind { return KindAdminSpecialMenu }

type AdminSpecialKisses struct{ none }

func (AdminSpecialKisses) Kind() Kind { return KindAdminSpecialKisses }

type AdminSpecialGift struct{ none }

func (AdminSpecialGift) Kind() Kind { return KindAdminSpecialGift }

type AdminSpecialSend struct{ none }

func (AdminSpecialSend) Kind() Kind { return KindAdminSpecialSend }

type AdminPickCategory struct{ CategoryID int64 }

func (AdminPickCategory) Kind() Kind         { return KindAdminPickCategory }
func (a AdminPickCategory) fields() []string { return []string{itoa(a.CategoryID)} }

// AdminPickSubcategory selects a subcategory; zero means none.
type AdminPickSubcategory struct{ SubcategoryID int64 }

func (AdminPickSubcategory) Kind() Kind         { return KindAdminPickSubcategory }
func (a AdminPickSubcategory) fields() []string { return []string{itoa(a.SubcategoryID)} }

type AdminPickCurrency struct{ CurrencyID int64 }

func (AdminPickCurrency) Kind() Kind         { return KindAdminPickCurrency }
func (a AdminPickCurrency) fields() []string { return []string{itoa(a.CurrencyID)} }

type AdminEditCategory struct{ CategoryID int64 }

func (AdminEditCategory) Kind() Kind         { return KindAdminEditCategory }
func (a AdminEditCategory) fields() []string { return []string{itoa(a.CategoryID)} }

type AdminEditSelect struct{ ItemID int64 }

func (AdminEditSelect) Kind() Kind         { return KindAdminEditSelect }
func (a AdminEditSelect) fields() []string { return []string{itoa(a.ItemID)} }

type AdminEditMedia struct{ ItemID int64 }

func (AdminEditMedia) Kind() Kind         { return KindAdminEditMedia }
func (a AdminEditMedia) fields() []string { return []string{itoa(a.ItemID)} }

// AdminBack steps back inside the edit-item wizard.
type AdminBack struct{ none }

func (AdminBack) Kind() Kind { return KindAdminBack }

type AdminPanel struct{ none }

func (AdminPanel) Kind() Kind { return KindAdminPanel }

type AdminCancel struct{ none }

func (AdminCancel) Kind() Kind { return KindAdminCancel }

// IsGlobalOverride reports whether a drops every pending wizard before it is handled.
func IsGlobalOverride(a Action) bool {
	switch a.(type) {
	case BackToMenu, CancelForm, CancelOrder, CancelSpecialOrder, AdminCancel:
		return true
	default:
		return false
	}
}
