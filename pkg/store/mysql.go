// Package store persists users, contacts, and the conversation audit log
// in MySQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/voxwallet-hq/voxwallet/pkg/models"
)

// Store wraps the MySQL connection pool.
type Store struct {
	db *sql.DB
}

// New opens the database, verifies the connection, and ensures the schema.
func New(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("MySQL DSN is required")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %v", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL: %v", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			telegram_id BIGINT PRIMARY KEY,
			username VARCHAR(255),
			wallet_address VARCHAR(64),
			keystore BLOB,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			telegram_id BIGINT NOT NULL,
			contact_name VARCHAR(255) NOT NULL,
			wallet_address VARCHAR(128) NOT NULL,
			PRIMARY KEY (telegram_id, contact_name)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id CHAR(36) PRIMARY KEY,
			telegram_id BIGINT NOT NULL,
			content TEXT NOT NULL,
			role VARCHAR(30) NOT NULL,
			mtype VARCHAR(30) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_messages_user (telegram_id),
			INDEX idx_messages_mtype (mtype)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %v", err)
		}
	}
	return nil
}

// GetUser returns the user, or sql.ErrNoRows wrapped when absent.
func (s *Store) GetUser(ctx context.Context, telegramID int64) (models.User, error) {
	var user models.User
	var username, walletAddress sql.NullString
	var keystore []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT telegram_id, username, wallet_address, keystore, created_at FROM users WHERE telegram_id = ?`,
		telegramID,
	).Scan(&user.TelegramID, &username, &walletAddress, &keystore, &user.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to load user %d: %w", telegramID, err)
	}

	user.Username = username.String
	user.WalletAddress = walletAddress.String
	user.Keystore = keystore
	return user, nil
}

// GetOrCreateUser loads the user, inserting a fresh row the first time the
// identity is seen.
func (s *Store) GetOrCreateUser(ctx context.Context, telegramID int64, username string) (models.User, error) {
	user, err := s.GetUser(ctx, telegramID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.User{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (telegram_id, username) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE telegram_id = telegram_id`,
		telegramID, username,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create user %d: %v", telegramID, err)
	}
	return s.GetUser(ctx, telegramID)
}

// UpdateUsername refreshes the cached transport username.
func (s *Store) UpdateUsername(ctx context.Context, telegramID int64, username string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET username = ? WHERE telegram_id = ?`,
		username, telegramID,
	)
	if err != nil {
		return fmt.Errorf("failed to update username for user %d: %v", telegramID, err)
	}
	return nil
}

// SetWalletDetails stores the wallet address and encrypted keystore.
func (s *Store) SetWalletDetails(ctx context.Context, telegramID int64, walletAddress string, keystore []byte) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET wallet_address = ?, keystore = ? WHERE telegram_id = ?`,
		walletAddress, keystore, telegramID,
	)
	if err != nil {
		return fmt.Errorf("failed to store wallet details for user %d: %v", telegramID, err)
	}
	return nil
}

// Contacts returns every contact of the user in insertion order.
func (s *Store) Contacts(ctx context.Context, telegramID int64) ([]models.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT telegram_id, contact_name, wallet_address FROM contacts WHERE telegram_id = ?`,
		telegramID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load contacts for user %d: %v", telegramID, err)
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		var contact models.Contact
		if err := rows.Scan(&contact.TelegramID, &contact.Name, &contact.WalletAddress); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %v", err)
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %v", err)
	}
	return contacts, nil
}

// AddContact stores a name/address pair, replacing an existing name.
func (s *Store) AddContact(ctx context.Context, telegramID int64, name, walletAddress string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contacts (telegram_id, contact_name, wallet_address) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE wallet_address = VALUES(wallet_address)`,
		telegramID, name, walletAddress,
	)
	if err != nil {
		return fmt.Errorf("failed to add contact for user %d: %v", telegramID, err)
	}
	return nil
}

// AddMessage appends an audit row tagged with a message-type marker such as
// transcribed-voice or ai-response.
func (s *Store) AddMessage(ctx context.Context, telegramID int64, content, role, mtype string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, telegram_id, content, role, mtype) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), telegramID, content, role, mtype,
	)
	if err != nil {
		return fmt.Errorf("failed to record message for user %d: %v", telegramID, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
