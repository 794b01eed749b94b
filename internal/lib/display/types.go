package display

import "fmt"

// Severity is the visual class attached to a status badge.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityDelay
	SeverityHighTraffic
	SeverityFlowing
	SeverityCancelled
	SeveritySlowdown
)

var severityNames = [...]string{
	SeverityNormal:      "normal",
	SeverityDelay:       "delay",
	SeverityHighTraffic: "high-traffic",
	SeverityFlowing:     "flowing",
	SeverityCancelled:   "cancelled",
	SeveritySlowdown:    "slowdown",
}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return severityNames[s]
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	i, err := indexOf(severityNames[:], string(b))
	if err != nil {
		return err
	}
	*s = Severity(i)
	return nil
}

// InlineKind tags an inline node.
type InlineKind int

const (
	InlineText InlineKind = iota
	InlineBold
	InlineBadge
	InlineCurrency
)

var inlineKindNames = [...]string{"text", "bold", "badge", "currency"}

func (k InlineKind) String() string { return inlineKindNames[k] }

func (k InlineKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *InlineKind) UnmarshalText(b []byte) error {
	i, err := indexOf(inlineKindNames[:], string(b))
	if err != nil {
		return err
	}
	*k = InlineKind(i)
	return nil
}

// Inline is a span inside a paragraph, heading or table cell.
// Text holds the literal text for Text and Currency nodes and the badge label
// for Badge nodes. Bold nodes carry their content in Children.
type Inline struct {
	Kind     InlineKind `json:"kind"`
	Text     string     `json:"text,omitempty"`
	Severity *Severity  `json:"severity,omitempty"`
	Children []Inline   `json:"children,omitempty"`
}

// BlockKind tags a block node.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockTable
)

var blockKindNames = [...]string{"paragraph", "heading", "table"}

func (k BlockKind) String() string { return blockKindNames[k] }

func (k BlockKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *BlockKind) UnmarshalText(b []byte) error {
	i, err := indexOf(blockKindNames[:], string(b))
	if err != nil {
		return err
	}
	*k = BlockKind(i)
	return nil
}

// CellKind is the emphasis class of a table body cell.
type CellKind int

const (
	CellPlain CellKind = iota
	CellTime
	CellPrice
	CellAlert
)

var cellKindNames = [...]string{"plain", "time", "price", "alert"}

func (k CellKind) String() string { return cellKindNames[k] }

func (k CellKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *CellKind) UnmarshalText(b []byte) error {
	i, err := indexOf(cellKindNames[:], string(b))
	if err != nil {
		return err
	}
	*k = CellKind(i)
	return nil
}

// Cell is one table cell. Source is the trimmed cell text before inline
// transforms.
type Cell struct {
	Source  string   `json:"source"`
	Kind    CellKind `json:"kind"`
	Content []Inline `json:"content"`
}

// Table holds a header row and any number of body rows. Rows may be ragged.
type Table struct {
	Header []Cell   `json:"header"`
	Rows   [][]Cell `json:"rows"`
}

// Node is one display block.
type Node struct {
	Kind    BlockKind `json:"kind"`
	Level   int       `json:"level,omitempty"`
	Content []Inline  `json:"content,omitempty"`
	Table   *Table    `json:"table,omitempty"`
}

// PlainText flattens inline content back to readable text, with badges shown
// by label.
func PlainText(content []Inline) string {
	var out []byte
	for _, in := range content {
		if in.Kind == InlineBold {
			out = append(out, PlainText(in.Children)...)
			continue
		}
		out = append(out, in.Text...)
	}
	return string(out)
}

func indexOf(names []string, name string) (int, error) {
	for i, n := range names {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown display kind %q", name)
}
