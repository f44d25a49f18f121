package database

// schema uses only types understood by both PostgreSQL and SQLite.
// Campaign weeks are stored as a JSON document in the weeks column.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(36) PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		first_name VARCHAR(50) NOT NULL,
		last_name VARCHAR(50) NOT NULL,
		role VARCHAR(20) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_by VARCHAR(36),
		last_login_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email)`,
	`CREATE INDEX IF NOT EXISTS users_role_active_idx ON users (role, is_active)`,

	`CREATE TABLE IF NOT EXISTS vendors (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL,
		phone VARCHAR(20) NOT NULL,
		address VARCHAR(200) NOT NULL,
		city VARCHAR(100) NOT NULL,
		state VARCHAR(50) NOT NULL,
		zip_code VARCHAR(10) NOT NULL,
		contact_person VARCHAR(100) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_by VARCHAR(36) NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS vendors_email_key ON vendors (email)`,
	`CREATE INDEX IF NOT EXISTS vendors_active_name_idx ON vendors (is_active, name)`,

	`CREATE TABLE IF NOT EXISTS campaigns (
		id VARCHAR(36) PRIMARY KEY,
		vendor_id VARCHAR(36) NOT NULL REFERENCES vendors (id),
		name VARCHAR(200) NOT NULL,
		current_product VARCHAR(100) NOT NULL,
		total_mailing_quantity INTEGER NOT NULL,
		total_weeks INTEGER NOT NULL,
		start_date TIMESTAMP NOT NULL,
		payment_day VARCHAR(10) NOT NULL,
		next_scheduled_product VARCHAR(100) NOT NULL DEFAULT '',
		next_scheduled_artwork_due_date TIMESTAMP,
		address VARCHAR(300) NOT NULL,
		city VARCHAR(100) NOT NULL,
		state VARCHAR(50) NOT NULL,
		zip_code VARCHAR(10) NOT NULL,
		latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
		longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
		postcard_image_url TEXT NOT NULL DEFAULT '',
		weeks TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_by VARCHAR(36) NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS campaigns_vendor_idx ON campaigns (vendor_id)`,
	`CREATE INDEX IF NOT EXISTS campaigns_active_created_idx ON campaigns (is_active, created_at)`,

	`CREATE TABLE IF NOT EXISTS integrations (
		id VARCHAR(36) PRIMARY KEY,
		vendor_id VARCHAR(36) NOT NULL REFERENCES vendors (id),
		provider VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL,
		environment VARCHAR(20) NOT NULL DEFAULT '',
		credentials TEXT NOT NULL DEFAULT '',
		connected_at TIMESTAMP,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_by VARCHAR(36) NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS integrations_vendor_provider_key ON integrations (vendor_id, provider)`,
}
