package testutil

// StationMigrations returns the station tables
func StationMigrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS stations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(255) NOT NULL,
			address TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
}

// DirectoryMigrations returns the cached user directory tables.
// Users are owned by the identity provider and mirrored here from
// user.* events.
func DirectoryMigrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			name VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'operator',
			station_id UUID REFERENCES stations(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT users_role_valid CHECK (role IN ('admin', 'manager', 'operator'))
		)`,

		`CREATE INDEX IF NOT EXISTS idx_users_station ON users(station_id)`,
	}
}

// CatalogMigrations returns the product catalog tables
func CatalogMigrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(255) NOT NULL,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT categories_name_key UNIQUE (name)
		)`,

		`CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(255) NOT NULL,
			barcode VARCHAR(14),
			description TEXT,
			image_url TEXT,
			category_id UUID NOT NULL REFERENCES categories(id),
			unit VARCHAR(50) NOT NULL DEFAULT 'piece',
			notification_threshold_days INTEGER NOT NULL DEFAULT 7,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT products_barcode_key UNIQUE (barcode),
			CONSTRAINT products_threshold_positive CHECK (notification_threshold_days >= 1)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id)`,
	}
}

// InventoryMigrations returns the lot and activity ledger tables
func InventoryMigrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS lots (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			lot_code VARCHAR(100) NOT NULL,
			product_id UUID NOT NULL REFERENCES products(id),
			station_id UUID NOT NULL REFERENCES stations(id),
			quantity INTEGER NOT NULL DEFAULT 0,
			initial_quantity INTEGER NOT NULL DEFAULT 0,
			status VARCHAR(50) NOT NULL DEFAULT 'in_stock',
			received_by UUID,
			received_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT lots_lot_code_key UNIQUE (lot_code),
			CONSTRAINT lots_quantity_non_negative CHECK (quantity >= 0),
			CONSTRAINT lots_status_valid CHECK (status IN ('in_stock', 'expiring_soon', 'expired', 'empty'))
		)`,

		`CREATE INDEX IF NOT EXISTS idx_lots_station ON lots(station_id)`,
		`CREATE INDEX IF NOT EXISTS idx_lots_status ON lots(status)`,
		`CREATE INDEX IF NOT EXISTS idx_lots_expires_at ON lots(expires_at)`,

		// quantity holds the unsigned magnitude; the action determines the
		// sign of the change (see domain.Action.Delta).
		`CREATE TABLE IF NOT EXISTS activities (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			lot_id UUID NOT NULL REFERENCES lots(id) ON DELETE CASCADE,
			action VARCHAR(50) NOT NULL,
			quantity INTEGER NOT NULL,
			quantity_after INTEGER NOT NULL,
			performed_by UUID,
			note TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT activities_action_valid CHECK (action IN ('restock', 'sold', 'removed_expired', 'removed_manual')),
			CONSTRAINT activities_quantity_positive CHECK (quantity > 0)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_lot ON activities(lot_id, created_at DESC)`,
	}
}

// NotifierMigrations returns the expiration notification tables
func NotifierMigrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			lot_id UUID NOT NULL REFERENCES lots(id) ON DELETE CASCADE,
			kind VARCHAR(50) NOT NULL DEFAULT 'expiring_soon',
			status VARCHAR(20) NOT NULL DEFAULT 'sent',
			notified_on DATE NOT NULL DEFAULT CURRENT_DATE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT notifications_lot_key UNIQUE (lot_id)
		)`,
	}
}

// AllMigrations returns every table in dependency order
func AllMigrations() []string {
	migrations := make([]string, 0)
	migrations = append(migrations, StationMigrations()...)
	migrations = append(migrations, DirectoryMigrations()...)
	migrations = append(migrations, CatalogMigrations()...)
	migrations = append(migrations, InventoryMigrations()...)
	migrations = append(migrations, NotifierMigrations()...)
	return migrations
}

// AllTables lists every table in reverse dependency order, for truncation
// between tests.
func AllTables() []string {
	return []string{
		"notifications",
		"activities",
		"lots",
		"products",
		"categories",
		"users",
		"stations",
	}
}
