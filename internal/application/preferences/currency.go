// Package preferences keeps the user's display preferences, currently the
// currency symbol used for amounts.
package preferences

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/optica/admin/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultSymbol is used until the user picks another currency
const DefaultSymbol = "Rs"

// Symbols lists the selectable currency symbols in display order
var Symbols = []string{
	"$", "€", "£", "¥", "Rs", "₹", "₩", "₽", "₫", "₪", "₦", "฿", "₴",
	"C$", "R$", "₱", "CHF", "₡", "د.إ", "د.م.", "RM", "R",
}

// CurrencyService holds the selected currency symbol and formats amounts
type CurrencyService struct {
	store   shared.KVStore
	printer *message.Printer
	logger  *zap.Logger

	mu     sync.RWMutex
	symbol string
}

// NewCurrencyService creates the service with the default symbol
func NewCurrencyService(store shared.KVStore, logger *zap.Logger) *CurrencyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CurrencyService{
		store:   store,
		printer: message.NewPrinter(language.English),
		logger:  logger.Named("preferences"),
		symbol:  DefaultSymbol,
	}
}

// Load reads the persisted symbol. Failures keep the current symbol.
func (s *CurrencyService) Load(ctx context.Context) string {
	v, ok, err := s.store.Get(ctx, shared.KeySelectedCurrency)
	if err != nil {
		s.logger.Warn("Failed to load currency, keeping default", zap.Error(err))
		return s.Symbol()
	}
	if ok && strings.TrimSpace(v) != "" {
		s.mu.Lock()
		s.symbol = v
		s.mu.Unlock()
	}
	return s.Symbol()
}

// Symbol returns the selected symbol
func (s *CurrencyService) Symbol() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.symbol
}

// Select picks one of Symbols or an ISO 4217 code (resolved to its
// narrow symbol) and persists it.
func (s *CurrencyService) Select(ctx context.Context, choice string) (string, error) {
	symbol, err := Resolve(choice)
	if err != nil {
		return s.Symbol(), err
	}
	if err := s.store.Set(ctx, shared.KeySelectedCurrency, symbol); err != nil {
		return s.Symbol(), fmt.Errorf("persisting currency: %w", err)
	}
	s.mu.Lock()
	s.symbol = symbol
	s.mu.Unlock()
	s.logger.Info("Currency selected", zap.String("symbol", symbol))
	return symbol, nil
}

// FormatAmount renders d as the symbol followed by the amount grouped in
// thousands with two decimals, e.g. Rs1,234.50
func (s *CurrencyService) FormatAmount(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	f := d.Round(2).InexactFloat64()
	return sign + s.Symbol() + s.printer.Sprint(number.Decimal(f, number.Scale(2)))
}

// Resolve maps a user choice to a display symbol
func Resolve(choice string) (string, error) {
	choice = strings.TrimSpace(choice)
	if slices.Contains(Symbols, choice) {
		return choice, nil
	}
	unit, err := currency.ParseISO(strings.ToUpper(choice))
	if err != nil {
		return "", shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown currency %q", choice))
	}
	if sym := fmt.Sprint(currency.NarrowSymbol(unit)); sym != "" {
		return sym, nil
	}
	return unit.String(), nil
}
