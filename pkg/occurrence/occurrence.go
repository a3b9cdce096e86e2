package occurrence

import (
	"fmt"
	"time"

	"github.com/balanza/balanza/internal/utils"
	"github.com/balanza/balanza/pkg/entry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// occurrenceNamespace is the fixed UUID namespace for derived occurrence ids.
// Changing it would invalidate every id clients may have cached.
var occurrenceNamespace = uuid.MustParse("b7f1ac2e-54d3-4a8f-9c06-1f25c7a40d11")

// Occurrence is a concrete dated instance of a series after exception overlay.
// It is derived on every query and never persisted.
type Occurrence struct {
	ID          uuid.UUID
	SeriesID    int64
	EntryType   entry.EntryType
	Title       string
	Description string
	Amount      decimal.Decimal
	Date        time.Time
}

// ID derives the stable occurrence identifier for a series and date. The same
// input always yields the same id, so repeated expansions and client-side
// caching stay consistent.
func ID(seriesId int64, date time.Time) uuid.UUID {
	name := fmt.Sprintf("%d/%s", seriesId, utils.FormatDate(date))
	return uuid.NewSHA1(occurrenceNamespace, []byte(name))
}
