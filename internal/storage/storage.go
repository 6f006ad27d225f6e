// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/rovshanmuradov/trend-sniper/internal/storage/models"
)

var (
	// ErrNotFound is returned when no position matches the lookup.
	ErrNotFound = errors.New("position not found")
	// ErrDuplicate is returned when an open position for the token already exists.
	ErrDuplicate = errors.New("open position already exists for token")
	// ErrNotUpdated is returned when the close affected no open position.
	ErrNotUpdated = errors.New("position not updated")
)

// Store определяет интерфейс хранилища позиций.
type Store interface {
	// GetByTokenAddress возвращает любую позицию (открытую или закрытую) по адресу токена.
	GetByTokenAddress(ctx context.Context, address string) (*models.PositionRow, error)
	// Insert сохраняет новую открытую позицию.
	Insert(ctx context.Context, p *models.Position) error
	// ListOpen возвращает позиции с position_closed = false.
	ListOpen(ctx context.Context) ([]*models.PositionRow, error)
	// List возвращает все позиции, новые первыми.
	List(ctx context.Context) ([]*models.PositionRow, error)
	// ClosePosition закрывает открытую позицию ровно один раз.
	ClosePosition(ctx context.Context, id string, upd models.CloseUpdate) error

	Ping(ctx context.Context) error
	Close() error
}
