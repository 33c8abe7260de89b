// Package dedupe builds canonical duplicate keys for lien records and keeps
// the set of keys already accepted.
package dedupe

import (
	"context"
	"strings"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lien-cli/internal/model"
)

// Key builds the canonical key {site_id}_{amount}_{company_or_last_name}.
// The name part is trimmed, upper-cased, and whitespace-collapsed so that
// re-keying an existing sheet row yields the same value.
func Key(siteID, amount, name string) string {
	return strings.TrimSpace(siteID) + "_" + strings.TrimSpace(amount) + "_" + canonicalName(name)
}

// RecordKey keys a classification result on its company or last name.
func RecordKey(siteID, amount string, c model.ClassificationResult) string {
	return Key(siteID, amount, c.NameKey())
}

func canonicalName(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

// KeySource supplies keys written by earlier runs (the output sheet, the
// run store).
type KeySource interface {
	Keys(ctx context.Context) ([]string, error)
}

// KeySourceFunc adapts a function to KeySource.
type KeySourceFunc func(ctx context.Context) ([]string, error)

// Keys implements KeySource.
func (f KeySourceFunc) Keys(ctx context.Context) ([]string, error) { return f(ctx) }

// KeySet is the set of accepted keys for one run. It is owned by the caller
// and safe for concurrent use; acceptance order is decided by call order.
type KeySet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewKeySet returns a set pre-populated with keys.
func NewKeySet(keys ...string) *KeySet {
	ks := &KeySet{seen: make(map[string]struct{}, len(keys))}
	ks.Seed(keys...)
	return ks
}

// Seed adds previously written keys without counting them as accepted.
func (k *KeySet) Seed(keys ...string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, key := range keys {
		if key != "" {
			k.seen[key] = struct{}{}
		}
	}
}

// Offer accepts key if it has not been seen and reports whether it did.
func (k *KeySet) Offer(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.seen[key]; ok {
		return false
	}
	k.seen[key] = struct{}{}
	return true
}

// Contains reports whether key has been seen.
func (k *KeySet) Contains(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.seen[key]
	return ok
}

// Len returns the number of keys held.
func (k *KeySet) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.seen)
}

// Load builds a KeySet seeded from every source. Nil sources are skipped; any
// source error fails the load.
func Load(ctx context.Context, sources ...KeySource) (*KeySet, error) {
	ks := NewKeySet()
	for _, src := range sources {
		if src == nil {
			continue
		}
		keys, err := src.Keys(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "dedupe: load previous keys")
		}
		ks.Seed(keys...)
	}
	return ks, nil
}
