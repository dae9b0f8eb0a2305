package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StationFixture represents test station data
type StationFixture struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
}

// UserFixture represents a cached directory user
type UserFixture struct {
	ID        string
	Email     string
	Name      string
	Role      string
	StationID *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CategoryFixture represents test category data
type CategoryFixture struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// ProductFixture represents test product data
type ProductFixture struct {
	ID                        string
	Name                      string
	Barcode                   *string
	CategoryID                string
	Unit                      string
	NotificationThresholdDays int
	CreatedAt                 time.Time
}

// LotFixture represents test lot data
type LotFixture struct {
	ID         string
	LotCode    string
	ProductID  string
	StationID  string
	Quantity   int
	Status     string
	ReceivedAt time.Time
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FixtureFactory creates test fixtures with sensible defaults
type FixtureFactory struct {
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{sequence: 0}
}

// nextSeq returns the next sequence number for unique values
func (f *FixtureFactory) nextSeq() int {
	f.sequence++
	return f.sequence
}

// Station creates a station fixture with defaults
func (f *FixtureFactory) Station(opts ...func(*StationFixture)) StationFixture {
	seq := f.nextSeq()

	station := StationFixture{
		ID:        uuid.New().String(),
		Name:      fmt.Sprintf("Station %d", seq),
		Address:   fmt.Sprintf("%d Main Street", seq),
		CreatedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(&station)
	}

	return station
}

// WithStationName sets the station name
func WithStationName(name string) func(*StationFixture) {
	return func(s *StationFixture) {
		s.Name = name
	}
}

// User creates a user fixture with defaults
func (f *FixtureFactory) User(opts ...func(*UserFixture)) UserFixture {
	seq := f.nextSeq()

	user := UserFixture{
		ID:        uuid.New().String(),
		Email:     fmt.Sprintf("user%d@fuelstock.test", seq),
		Name:      fmt.Sprintf("Test User %d", seq),
		Role:      "operator",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(&user)
	}

	return user
}

// WithEmail sets the user email
func WithEmail(email string) func(*UserFixture) {
	return func(u *UserFixture) {
		u.Email = email
	}
}

// WithRole sets the user role
func WithRole(role string) func(*UserFixture) {
	return func(u *UserFixture) {
		u.Role = role
	}
}

// WithUserStation assigns the user to a station
func WithUserStation(stationID string) func(*UserFixture) {
	return func(u *UserFixture) {
		u.StationID = &stationID
	}
}

// Manager creates a manager fixture assigned to a station
func (f *FixtureFactory) Manager(stationID string) UserFixture {
	return f.User(WithRole("manager"), WithUserStation(stationID))
}

// Category creates a category fixture with defaults
func (f *FixtureFactory) Category(opts ...func(*CategoryFixture)) CategoryFixture {
	seq := f.nextSeq()

	category := CategoryFixture{
		ID:        uuid.New().String(),
		Name:      fmt.Sprintf("Category %d", seq),
		CreatedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(&category)
	}

	return category
}

// WithCategoryName sets the category name
func WithCategoryName(name string) func(*CategoryFixture) {
	return func(c *CategoryFixture) {
		c.Name = name
	}
}

// Product creates a product fixture with defaults
func (f *FixtureFactory) Product(categoryID string, opts ...func(*ProductFixture)) ProductFixture {
	seq := f.nextSeq()

	product := ProductFixture{
		ID:                        uuid.New().String(),
		Name:                      fmt.Sprintf("Product %d", seq),
		CategoryID:                categoryID,
		Unit:                      "piece",
		NotificationThresholdDays: 7,
		CreatedAt:                 time.Now(),
	}

	for _, opt := range opts {
		opt(&product)
	}

	return product
}

// WithBarcode sets the product barcode
func WithBarcode(barcode string) func(*ProductFixture) {
	return func(p *ProductFixture) {
		p.Barcode = &barcode
	}
}

// WithThresholdDays sets how many days before expiry notifications fire
func WithThresholdDays(days int) func(*ProductFixture) {
	return func(p *ProductFixture) {
		p.NotificationThresholdDays = days
	}
}

// WithProductName sets the product name
func WithProductName(name string) func(*ProductFixture) {
	return func(p *ProductFixture) {
		p.Name = name
	}
}

// Lot creates a lot fixture with defaults. By default it holds stock and
// expires in 90 days.
func (f *FixtureFactory) Lot(productID, stationID string, opts ...func(*LotFixture)) LotFixture {
	seq := f.nextSeq()

	lot := LotFixture{
		ID:         uuid.New().String(),
		LotCode:    fmt.Sprintf("LOT-%04d", seq),
		ProductID:  productID,
		StationID:  stationID,
		Quantity:   100,
		Status:     "in_stock",
		ReceivedAt: time.Now(),
		ExpiresAt:  time.Now().AddDate(0, 3, 0),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	for _, opt := range opts {
		opt(&lot)
	}

	return lot
}

// WithQuantity sets the lot quantity
func WithQuantity(quantity int) func(*LotFixture) {
	return func(l *LotFixture) {
		l.Quantity = quantity
	}
}

// WithLotStatus sets the lot status
func WithLotStatus(status string) func(*LotFixture) {
	return func(l *LotFixture) {
		l.Status = status
	}
}

// WithExpiresAt sets the lot expiry date
func WithExpiresAt(expiresAt time.Time) func(*LotFixture) {
	return func(l *LotFixture) {
		l.ExpiresAt = expiresAt
	}
}

// WithLotCode sets the lot code
func WithLotCode(code string) func(*LotFixture) {
	return func(l *LotFixture) {
		l.LotCode = code
	}
}

// ExpiringLot creates a lot that expires within the given number of days
func (f *FixtureFactory) ExpiringLot(productID, stationID string, days int) LotFixture {
	return f.Lot(productID, stationID,
		WithExpiresAt(time.Now().AddDate(0, 0, days)),
		WithLotStatus("expiring_soon"),
	)
}
