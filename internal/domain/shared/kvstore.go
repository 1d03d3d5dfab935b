package shared

import "context"

// Well-known keys of the persisted key-value state.
const (
	KeySessionUser      = "user"
	KeySessionToken     = "token"
	KeySelectedCurrency = "selectedCurrency"
	KeyAdsRemoved       = "ads_removed"
)

// KVStore is the small persisted key-value state kept on the device.
// Values are plain strings; there is no schema versioning.
type KVStore interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
