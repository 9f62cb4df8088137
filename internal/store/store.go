// Package store persists the application's named JSON blobs. Each key holds a
// whole array or object and is rewritten in full on save.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"
)

// Fixed keys. Values carry no schema; decoding is the caller's business.
const (
	KeyCustomers       = "customers"
	KeySuppliers       = "suppliers"
	KeyProducts        = "products"
	KeyProductGroups   = "productGroups"
	KeySalesBills      = "salesBills"
	KeyPurchaseBills   = "purchaseBills"
	KeyBookEntries     = "bookEntries"
	KeyCashLedger      = "cashLedger"
	KeyBusiness        = "business"
	KeyUsers           = "users"
	KeyPrinterSettings = "printerSettings"
	KeyAuditSettings   = "auditSettings"
	KeyNotifications   = "notifications"
	KeyLastAuditDate   = "lastAuditDate"
)

// AllKeys lists every key in backup order.
var AllKeys = []string{
	KeyBusiness, KeyUsers, KeyCustomers, KeySuppliers, KeyProductGroups, KeyProducts,
	KeySalesBills, KeyPurchaseBills, KeyBookEntries, KeyCashLedger,
	KeyPrinterSettings, KeyAuditSettings, KeyNotifications, KeyLastAuditDate,
}

// Reader fetches the raw JSON stored under key. ok is false when the key has
// never been written.
type Reader interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
}

// Writer replaces the value stored under key.
type Writer interface {
	Put(ctx context.Context, key string, value []byte) error
}

// Tx is the view handed to an Update callback. Reads see the callback's own
// earlier writes.
type Tx interface {
	Reader
	Writer
}

// Store is a namespaced keyed JSON store.
//
// Update runs fn atomically: either every Put made inside fn is committed, or
// none is. Updates on the same namespace are serialized.
type Store interface {
	Reader
	Writer
	Update(ctx context.Context, fn func(tx Tx) error) error
	Keys(ctx context.Context) ([]string, error)
}

var log logrus.FieldLogger = logrus.StandardLogger()

// SetLogger replaces the logger used for malformed-value warnings.
func SetLogger(l logrus.FieldLogger) {
	if l != nil {
		log = l
	}
}

// ErrMalformed is returned by Save when the key it would replace could not be
// decoded earlier in the same Update.
var ErrMalformed = errors.New("stored value is malformed")

// malformedTracker is implemented by Update transactions. Load marks keys it
// could not decode; Save refuses to overwrite them with a default.
type malformedTracker interface {
	markMalformed(key string)
	isMalformed(key string) bool
}

type malformedKeys map[string]bool

func (m malformedKeys) markMalformed(key string)    { m[key] = true }
func (m malformedKeys) isMalformed(key string) bool { return m[key] }

// Load decodes the value under key over dst, so fields absent from the stored
// document keep whatever default dst already held. A missing key leaves dst
// untouched.
//
// A field of the wrong JSON type is skipped and the rest of the value is kept.
// A value that is not JSON at all, or whose top level has the wrong shape, is
// logged and treated as missing; inside Update the key is also locked against
// Save for the rest of the transaction.
func Load[T any](ctx context.Context, r Reader, key string, dst *T) error {
	raw, ok, err := r.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return nil
	}
	v := *dst
	if err := json.Unmarshal(raw, &v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			log.WithFields(logrus.Fields{"key": key, "field": typeErr.Field, "error": err.Error()}).
				Warn("mistyped field in stored value, keeping the rest")
			*dst = v
			return nil
		}
		if m, ok := r.(malformedTracker); ok {
			m.markMalformed(key)
		}
		log.WithFields(logrus.Fields{"key": key, "error": err.Error()}).
			Warn("malformed value in store, using empty default")
		return nil
	}
	*dst = v
	return nil
}

// Save encodes v as JSON and writes it under key. A nil slice is written as
// an empty array.
func Save[T any](ctx context.Context, w Writer, key string, v T) error {
	if m, ok := w.(malformedTracker); ok && m.isMalformed(key) {
		return fmt.Errorf("refusing to overwrite %s: %w", key, ErrMalformed)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice && rv.IsNil() && rv.Type().Elem().Kind() != reflect.Uint8 {
		raw = []byte("[]")
	}
	if err := w.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
