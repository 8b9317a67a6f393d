package sdkstate

// Code is a state code reported by the SDK, e.g. "bleErrorDisabled".
type Code string

// String returns the raw code.
func (c Code) String() string {
	return string(c)
}

// Category groups state codes by the subsystem they concern.
type Category string

const (
	CategoryCredential Category = "credential"
	CategoryBluetooth  Category = "bluetooth"
	CategoryNFC        Category = "nfc"

	// CategoryUnknown is reported for codes missing from the table.
	CategoryUnknown Category = "unknown"
)

type entry struct {
	text     string
	category Category
	optional bool
}

// Message is a single entry of the status message list.
type Message struct {
	// ID is the state code as reported by the SDK.
	ID string `json:"id"`

	// Message is the display text, or the code itself when unknown.
	Message string `json:"message"`
}

// Lookup returns the display text for code and whether the code is known.
func Lookup(code string) (string, bool) {
	e, ok := table[Code(code)]
	if !ok {
		return "", false
	}
	return e.text, true
}

// DisplayText returns the display text for code, falling back to the code
// itself when no text is registered.
func DisplayText(code string) string {
	if text, ok := Lookup(code); ok {
		return text
	}
	return code
}

// CategoryOf returns the category of code.
func CategoryOf(code string) Category {
	if e, ok := table[Code(code)]; ok {
		return e.category
	}
	return CategoryUnknown
}

// IsOptional reports whether code describes a condition the app can work
// without, such as missing background location permission.
func IsOptional(code string) bool {
	return table[Code(code)].optional
}

// Messages converts a state snapshot into display messages, one per code, in
// snapshot order. The result is never nil.
func Messages(states []string) []Message {
	msgs := make([]Message, 0, len(states))
	for _, s := range states {
		msgs = append(msgs, Message{ID: s, Message: DisplayText(s)})
	}
	return msgs
}

// Known returns all codes with registered display text, in table order.
func Known() []Code {
	out := make([]Code, len(knownCodes))
	copy(out, knownCodes)
	return out
}
