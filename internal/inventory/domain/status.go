package domain

// Status is the lifecycle state of a lot.
type Status string

const (
	StatusInStock      Status = "in_stock"
	StatusExpiringSoon Status = "expiring_soon"
	StatusExpired      Status = "expired"
	StatusEmpty        Status = "empty"
)

// Statuses lists every valid status
func Statuses() []Status {
	return []Status{StatusInStock, StatusExpiringSoon, StatusExpired, StatusEmpty}
}

// IsValid reports whether the status is one of the known states
func (s Status) IsValid() bool {
	switch s {
	case StatusInStock, StatusExpiringSoon, StatusExpired, StatusEmpty:
		return true
	}
	return false
}

// String implements fmt.Stringer
func (s Status) String() string {
	return string(s)
}

// NextStatus computes the status a lot takes after its quantity changes.
//
// A drained lot is always empty. An empty lot that receives stock returns
// to in_stock. Any other status survives the mutation: restocking an
// expired or expiring lot does not reset its time-based state, only the
// expiration scan moves lots into those states.
func NextStatus(old Status, newQuantity int) Status {
	if newQuantity == 0 {
		return StatusEmpty
	}
	if old == StatusEmpty {
		return StatusInStock
	}
	return old
}
