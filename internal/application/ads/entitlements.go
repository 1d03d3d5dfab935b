package ads

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/optica/admin/internal/domain/shared"
	"go.uber.org/zap"
)

// PurchaseVerifier restores a previously bought "remove ads" purchase from the
// store (Play/App Store, RevenueCat...). It reports whether a valid purchase
// was found.
type PurchaseVerifier interface {
	RestorePurchases(ctx context.Context) (bool, error)
}

// Entitlements owns the persisted "ads removed" flag. The flag gates every
// show attempt and is read once at startup.
type Entitlements struct {
	store     shared.KVStore
	verifier  PurchaseVerifier
	logger    *zap.Logger
	removed   atomic.Bool
	restoring atomic.Bool
}

// NewEntitlements creates the flag holder. verifier may be nil, in which case
// restoring only re-reads the persisted flag.
func NewEntitlements(store shared.KVStore, verifier PurchaseVerifier, logger *zap.Logger) *Entitlements {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Entitlements{
		store:    store,
		verifier: verifier,
		logger:   logger,
	}
}

// Load reads the persisted flag. A read failure leaves ads enabled.
func (e *Entitlements) Load(ctx context.Context) error {
	val, _, err := e.store.Get(ctx, shared.KeyAdsRemoved)
	if err != nil {
		e.logger.Warn("failed to read ads-removed flag", zap.Error(err))
		return fmt.Errorf("reading ads-removed flag: %w", err)
	}
	e.removed.Store(val == "1")
	return nil
}

// AdsRemoved reports whether the user has paid to remove ads
func (e *Entitlements) AdsRemoved() bool {
	return e.removed.Load()
}

// RemoveAds persists the flag after a completed purchase
func (e *Entitlements) RemoveAds(ctx context.Context) error {
	return e.persist(ctx, true)
}

// RestorePurchases looks for an earlier purchase. Concurrent calls while a
// restore is running return false immediately.
func (e *Entitlements) RestorePurchases(ctx context.Context) (bool, error) {
	if !e.restoring.CompareAndSwap(false, true) {
		return false, nil
	}
	defer e.restoring.Store(false)

	if e.verifier != nil {
		ok, err := e.verifier.RestorePurchases(ctx)
		if err != nil {
			e.logger.Warn("restore purchases failed", zap.Error(err))
			return false, fmt.Errorf("restoring purchases: %w", err)
		}
		if !ok {
			return false, nil
		}
		if err := e.persist(ctx, true); err != nil {
			return false, err
		}
		return true, nil
	}

	val, _, err := e.store.Get(ctx, shared.KeyAdsRemoved)
	if err != nil {
		e.logger.Warn("restore purchases failed", zap.Error(err))
		return false, fmt.Errorf("reading ads-removed flag: %w", err)
	}
	if val == "1" {
		e.removed.Store(true)
		return true, nil
	}
	return false, nil
}

func (e *Entitlements) persist(ctx context.Context, removed bool) error {
	val := "0"
	if removed {
		val = "1"
	}
	if err := e.store.Set(ctx, shared.KeyAdsRemoved, val); err != nil {
		e.logger.Warn("failed to persist ads-removed flag", zap.Error(err))
		return fmt.Errorf("persisting ads-removed flag: %w", err)
	}
	e.removed.Store(removed)
	return nil
}
