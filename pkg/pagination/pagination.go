package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Billing history pages default to 25 rows and never exceed 100.
const (
	DefaultLimit = 25
	MaxLimit     = 100
)

const cursorSeparator = "~"

// Cursor is the keyset position of the last row on a page: rows are ordered
// newest first by (created_at, id).
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// LimitWithBuffer asks the store for one extra row so Trim can tell whether
// another page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor produces an opaque, URL safe token.
func EncodeCursor(c Cursor) string {
	raw := strconv.FormatInt(c.CreatedAt.UTC().UnixNano(), 36) + cursorSeparator + c.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseCursor returns nil for an empty token so the first page needs no
// special casing.
func ParseCursor(token string) (*Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	stamp, id, ok := strings.Cut(string(raw), cursorSeparator)
	if !ok {
		return nil, fmt.Errorf("invalid cursor format")
	}
	nanos, err := strconv.ParseInt(stamp, 36, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	return &Cursor{CreatedAt: time.Unix(0, nanos).UTC(), ID: parsedID}, nil
}

// Page is a cursor-paginated slice of results.
type Page[T any] struct {
	Items      []T    `json:"results"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// Trim cuts a buffered result set back to limit and, when a further row was
// fetched, encodes the cursor of the last returned row.
func Trim[T any](rows []T, limit int, cursorOf func(T) Cursor) Page[T] {
	limit = NormalizeLimit(limit)
	if len(rows) <= limit {
		if rows == nil {
			rows = []T{}
		}
		return Page[T]{Items: rows}
	}
	items := rows[:limit]
	return Page[T]{
		Items:      items,
		NextCursor: EncodeCursor(cursorOf(items[len(items)-1])),
	}
}
