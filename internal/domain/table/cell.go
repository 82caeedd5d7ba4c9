package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// CellKind tags the dynamic type of a cell
type CellKind int

const (
	KindNull CellKind = iota
	KindNumber
	KindString
)

func (k CellKind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindNumber:
		return "NUMBER"
	case KindString:
		return "STRING"
	default:
		return fmt.Sprintf("CellKind(%d)", int(k))
	}
}

// Cell is a single table value: null, a number, or a string.
// The zero value is a null cell.
type Cell struct {
	Kind CellKind
	Num  float64
	Str  string
}

// Null returns an empty cell
func Null() Cell { return Cell{Kind: KindNull} }

// Number wraps a native number
func Number(v float64) Cell { return Cell{Kind: KindNumber, Num: v} }

// String wraps raw text
func String(s string) Cell { return Cell{Kind: KindString, Str: s} }

// IsNull reports whether the cell holds no value
func (c Cell) IsNull() bool { return c.Kind == KindNull }

// Text renders the cell the way it would be shown in a table view.
// Null renders as the empty string.
func (c Cell) Text() string {
	switch c.Kind {
	case KindNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case KindString:
		return c.Str
	default:
		return ""
	}
}

func (c Cell) String() string {
	if c.Kind == KindNull {
		return "NULL"
	}
	return c.Text()
}

// MarshalJSON writes the cell back in its original JSON shape
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case KindNumber:
		return json.Marshal(c.Num)
	case KindString:
		return json.Marshal(c.Str)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts string, number, null and (for tolerance) booleans,
// which are kept as their textual form.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Null()
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = String(s)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*c = String(strconv.FormatBool(b))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("unsupported cell value %s: %w", string(data), err)
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("invalid numeric cell %s: %w", n, err)
	}
	*c = Number(f)
	return nil
}
