package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderID renders <prefix>-<unix millis>-<8 hex chars>.
func NewOrderID(prefix string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), suffix)
}
