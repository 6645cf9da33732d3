package formatter

import (
	"encoding/json"

	"github.com/Indosaram/logxide/core"
)

// JSONFormatter renders each record as a single JSON object built
// from the record's field map. Useful for stream and file sinks that
// feed log shippers.
type JSONFormatter struct{}

// Format marshals the record's fields. Marshal failures degrade to
// the raw message like every other formatter.
func (JSONFormatter) Format(r *core.Record) string {
	data, err := json.Marshal(r.FieldMap())
	if err != nil {
		return r.Message()
	}
	return string(data)
}
