package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/washdesk/internal/model"
)

// DefaultListLimit caps list queries when the caller passes no limit.
const DefaultListLimit = 200

type NotificationStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db, now: time.Now}
}

const notificationCols = `id, type, title, message, booking_ref, extra, is_read, created_at`

func scanNotification(scanner interface{ Scan(...any) error }) (*model.Notification, error) {
	var n model.Notification
	var extra string
	var isRead int

	err := scanner.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.BookingID, &extra, &isRead, &n.CreatedAt)
	if err != nil {
		return nil, err
	}

	n.IsRead = isRead != 0
	if extra != "" && extra != "{}" {
		if err := json.Unmarshal([]byte(extra), &n.Extra); err != nil {
			return nil, fmt.Errorf("decode extra: %w", err)
		}
	}
	return &n, nil
}

// Create inserts a notification, filling in the ID and creation time when unset.
// Creation times are stored in UTC.
// Unseen categories are added to the known type list.
func (s *NotificationStore) Create(n model.Notification) (*model.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	// created_at sorts as text, so every row must share one offset.
	n.CreatedAt = n.CreatedAt.UTC()

	extra := []byte("{}")
	if len(n.Extra) > 0 {
		var err error
		extra, err = json.Marshal(n.Extra)
		if err != nil {
			return nil, fmt.Errorf("encode extra: %w", err)
		}
	}
	var isRead int
	if n.IsRead {
		isRead = 1
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO notifications (id, type, title, message, booking_ref, extra, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Type, n.Title, n.Message, n.BookingID, string(extra), isRead, n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO notification_types (name, sort_order)
		 VALUES (?, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM notification_types))
		 ON CONFLICT(name) DO NOTHING`,
		n.Type,
	)
	if err != nil {
		return nil, fmt.Errorf("register notification type: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(n.ID)
}

func (s *NotificationStore) GetByID(id string) (*model.Notification, error) {
	row := s.db.QueryRow(`SELECT `+notificationCols+` FROM notifications WHERE id = ?`, id)
	n, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

// List returns notifications newest first. An empty typ returns every category.
func (s *NotificationStore) List(typ string, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var rows *sql.Rows
	var err error
	if typ == "" {
		rows, err = s.db.Query(
			`SELECT `+notificationCols+` FROM notifications ORDER BY created_at DESC, rowid DESC LIMIT ?`,
			limit,
		)
	} else {
		rows, err = s.db.Query(
			`SELECT `+notificationCols+` FROM notifications WHERE type = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
			typ, limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

// Types returns the known notification categories in display order.
func (s *NotificationStore) Types() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM notification_types ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list notification types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan notification type: %w", err)
		}
		types = append(types, name)
	}
	return types, rows.Err()
}

// MarkRead sets the read flag on one notification. It returns nil if the
// notification does not exist.
func (s *NotificationStore) MarkRead(id string) (*model.Notification, error) {
	result, err := s.db.Exec(
		`UPDATE notifications SET is_read = 1, read_at = COALESCE(read_at, ?) WHERE id = ?`,
		s.now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetByID(id)
}

// MarkAllRead marks every unread notification read and returns how many changed.
func (s *NotificationStore) MarkAllRead() (int64, error) {
	result, err := s.db.Exec(`UPDATE notifications SET is_read = 1, read_at = ? WHERE is_read = 0`, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

func (s *NotificationStore) CountUnread() (int64, error) {
	var count int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE is_read = 0`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}
