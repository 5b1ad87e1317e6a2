package period

import "fmt"

// Kind names one data bucket held by a period.
type Kind string

const (
	KindIncome           Kind = "income"
	KindFixedExpenses    Kind = "fixed_expenses"
	KindVariableExpenses Kind = "variable_expenses"
	KindExtraExpenses    Kind = "extra_expenses"
	KindConfiguration    Kind = "configuration"
	KindUserProfile      Kind = "user_profile"
	KindReports          Kind = "reports"
)

var allKinds = []Kind{
	KindIncome,
	KindFixedExpenses,
	KindVariableExpenses,
	KindExtraExpenses,
	KindConfiguration,
	KindUserProfile,
	KindReports,
}

// storageNames are the key segments used by the persisted layout. They match
// the names of the flat pre-partition dataset so old keys map one to one.
var storageNames = map[Kind]string{
	KindIncome:           "ingresos",
	KindFixedExpenses:    "gastos_fijos",
	KindVariableExpenses: "gastos_variables",
	KindExtraExpenses:    "gastos_extras",
	KindConfiguration:    "configuracion",
	KindUserProfile:      "user_data",
	KindReports:          "reportes",
}

// AllKinds returns every bucket kind in canonical order.
func AllKinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseKind validates a bucket kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown bucket kind %q", s)
	}
	return k, nil
}

func (k Kind) String() string { return string(k) }

// Valid reports whether k is one of the known bucket kinds.
func (k Kind) Valid() bool {
	_, ok := storageNames[k]
	return ok
}

// StorageName returns the key segment used to persist the bucket.
func (k Kind) StorageName() string { return storageNames[k] }

// IsExpense reports whether the bucket holds payable line items.
func (k Kind) IsExpense() bool {
	switch k {
	case KindFixedExpenses, KindVariableExpenses, KindExtraExpenses:
		return true
	}
	return false
}

// HasItems reports whether the bucket is a total plus an ordered list of line items.
func (k Kind) HasItems() bool {
	return k == KindIncome || k.IsExpense()
}
