package invoice

import "fmt"

// PayMode is the payment method code sent with an invoice
type PayMode int

const (
	PayModeCash         PayMode = 1
	PayModeCard         PayMode = 2
	PayModeUPI          PayMode = 3
	PayModeCheque       PayMode = 4
	PayModeBankTransfer PayMode = 5
)

// PayModes lists the selectable payment methods in display order
var PayModes = []PayMode{PayModeCash, PayModeCard, PayModeUPI, PayModeCheque, PayModeBankTransfer}

// IsValid checks if the pay mode is a known value
func (m PayMode) IsValid() bool {
	return m >= PayModeCash && m <= PayModeBankTransfer
}

// Label returns the display name
func (m PayMode) Label() string {
	switch m {
	case PayModeCash:
		return "Cash"
	case PayModeCard:
		return "Card"
	case PayModeUPI:
		return "UPI"
	case PayModeCheque:
		return "Cheque"
	case PayModeBankTransfer:
		return "Bank Transfer"
	default:
		return fmt.Sprintf("PayMode(%d)", int(m))
	}
}

func (m PayMode) String() string {
	return m.Label()
}
