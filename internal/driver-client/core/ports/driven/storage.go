package driven

// KeyValueStore is the persisted device storage. Every key is owned by
// exactly one service; only the owner writes it.
type KeyValueStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(keys ...string) error
}

// VoucherStore saves downloaded order vouchers.
type VoucherStore interface {
	SaveVoucher(rideID string, data []byte) (string, error)
}
