package console

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/fd1az/solquote/business/venues/app"
	"github.com/fd1az/solquote/business/venues/domain"
)

// JSONReporter writes one indented JSON document per comparison.
type JSONReporter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONReporter creates a JSONReporter. A nil writer means stdout.
func NewJSONReporter(w io.Writer) *JSONReporter {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &JSONReporter{enc: enc}
}

func (r *JSONReporter) Start(ctx context.Context) error { return nil }

// Report encodes c. Encoding errors are dropped; the writer is a terminal
// or a pipe.
func (r *JSONReporter) Report(c *domain.VenueComparison) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.enc.Encode(c)
}

// Encode writes any value with the same formatting.
func (r *JSONReporter) Encode(v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enc.Encode(v)
}

func (r *JSONReporter) Stop() error { return nil }

var _ app.Reporter = (*JSONReporter)(nil)
