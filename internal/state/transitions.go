package state

// entryStates may be entered from anywhere; entering one restarts its wizard.
var entryStates = map[State]bool{
	StateCheckoutComment:     true,
	StateCustomText:          true,
	StateSpecialOrderComment: true,
	StateAddItemCategory:     true,
	StateEditItemCategory:    true,
	StateSpecialMenuMedia:    true,
	StateDebtUser:            true,
	StateDebtCurrency:        true,
}

// validTransitions contains the permitted in-wizard transitions.
var validTransitions = map[State][]State{
	StateAddItemCategory:    {StateAddItemSubcategory, StateAddItemTitle},
	StateAddItemSubcategory: {StateAddItemTitle},
	StateAddItemTitle:       {StateAddItemDescription},
	StateAddItemDescription: {StateAddItemMedia},
	StateAddItemMedia:       {StateAddItemPrice},
	StateAddItemPrice:       {StateAddItemCurrency},

	StateEditItemCategory: {StateEditItemSelect},
	StateEditItemSelect:   {StateEditItemMenu, StateEditItemCategory},
	StateEditItemMenu:     {StateEditItemMedia, StateEditItemSelect},
	StateEditItemMedia:    {StateEditItemMenu},

	StateSpecialMenuMedia:       {StateSpecialMenuDescription},
	StateSpecialMenuDescription: {StateSpecialMenuCurrency},
	StateSpecialMenuCurrency:    {StateSpecialMenuPrice, StateSpecialMenuConfirm},
	StateSpecialMenuPrice:       {StateSpecialMenuConfirm},

	StateDebtUser:     {StateDebtCurrency},
	StateDebtCurrency: {StateDebtAmount},
}

// IsTransitionAllowed reports whether moving from one state to another is valid.
// Returning to idle, entering a wizard and staying on the same step are always allowed.
func IsTransitionAllowed(from, to State) bool {
	if to == StateIdle || entryStates[to] || from == to {
		return true
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}

	return false
}
