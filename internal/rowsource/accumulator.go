// =============================================================================
// Purchase Order Generator - Manual Line Accumulator
// =============================================================================
//
// Manually entered purchase-order lines accumulate here between interactions
// until the user triggers generation. This is an explicit object with an
// add/clear/snapshot contract, not ambient state: a generation run receives a
// snapshot Table and the accumulator can keep changing underneath without
// affecting the run in flight.
//
// =============================================================================

package rowsource

import (
	"sync"

	"github.com/ginjaninja78/po-generator/internal/types"
)

// ManualEntry is one manually entered purchase-order line. All values are raw
// strings; coercion happens later, exactly as for parsed spreadsheet rows.
type ManualEntry struct {
	ControlNo string `json:"control_no"`
	ItemNo    string `json:"item_no"`
	Barcode   string `json:"barcode"`
	Qty       string `json:"qty"`
	Price     string `json:"price"`
	Delivery  string `json:"delivery"`
}

// manualHeaders are the synthetic column headers a snapshot Table carries.
// They are the most-preferred candidates per field, so auto-detection always
// resolves them on the exact-match pass.
var manualHeaders = []string{"Control NO", "Item NO", "Barcode", "Qty", "Price", "Delivery time"}

// Accumulator collects manual entries. Safe for concurrent use; the HTTP
// surface mutates it from request handlers.
type Accumulator struct {
	mu      sync.Mutex
	entries []ManualEntry
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add appends one entry.
func (a *Accumulator) Add(e ManualEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

// Clear discards all accumulated entries.
func (a *Accumulator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = nil
}

// Len returns the number of accumulated entries.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Entries returns a copy of the accumulated entries in insertion order.
func (a *Accumulator) Entries() []ManualEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]ManualEntry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Snapshot renders the accumulated entries as a Table with the synthetic
// headers, row-numbered by insertion order. The snapshot is independent of
// later Add/Clear calls.
func (a *Accumulator) Snapshot() *types.Table {
	a.mu.Lock()
	defer a.mu.Unlock()

	table := &types.Table{Headers: append([]string(nil), manualHeaders...)}
	for i, e := range a.entries {
		table.Records = append(table.Records, types.Record{
			Values: map[string]string{
				manualHeaders[0]: e.ControlNo,
				manualHeaders[1]: e.ItemNo,
				manualHeaders[2]: e.Barcode,
				manualHeaders[3]: e.Qty,
				manualHeaders[4]: e.Price,
				manualHeaders[5]: e.Delivery,
			},
			RowNumber: i + 1,
		})
	}
	return table
}
