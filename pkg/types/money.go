package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// DecimalList is a JSON-encoded list of amounts, used for per-area delivery charges.
type DecimalList []decimal.Decimal

// Value marshals the list into JSON.
func (d DecimalList) Value() (driver.Value, error) {
	if d == nil {
		return "[]", nil
	}
	buf, err := json.Marshal([]decimal.Decimal(d))
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes JSON into the list.
func (d *DecimalList) Scan(value interface{}) error {
	raw, err := jsonBytes(value, "decimal list")
	if err != nil {
		return err
	}
	if raw == nil {
		*d = DecimalList{}
		return nil
	}
	var out []decimal.Decimal
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*d = DecimalList(out)
	return nil
}

func jsonBytes(value interface{}, label string) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("%s: unsupported scan type %T", label, value)
	}
}
