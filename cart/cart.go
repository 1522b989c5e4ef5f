// Package cart holds the shopping cart aggregate: a pure reducer over cart
// lines and a Store that persists every change and notifies subscribers.
package cart

import (
	"github.com/Govind-619/Clomora/models"
	"github.com/shopspring/decimal"
)

// ActionType names a cart mutation.
type ActionType string

const (
	ActionAdd         ActionType = "ADD_ITEM"
	ActionRemove      ActionType = "REMOVE_ITEM"
	ActionSetQuantity ActionType = "UPDATE_QUANTITY"
	ActionClear       ActionType = "CLEAR_CART"
	ActionLoad        ActionType = "LOAD_CART"
)

// Action is one cart mutation. Which fields matter depends on Type.
type Action struct {
	Type     ActionType        `json:"type"`
	Line     models.CartLine   `json:"line,omitempty"`
	Key      models.CartKey    `json:"key,omitempty"`
	Quantity int               `json:"quantity,omitempty"`
	Lines    []models.CartLine `json:"lines,omitempty"`
}

// Add merges line into the cart, summing quantities on a key match.
func Add(line models.CartLine) Action { return Action{Type: ActionAdd, Line: line} }

// Remove drops the line with the given key.
func Remove(key models.CartKey) Action { return Action{Type: ActionRemove, Key: key} }

// SetQuantity overwrites a line's quantity; zero or less removes it.
func SetQuantity(key models.CartKey, qty int) Action {
	return Action{Type: ActionSetQuantity, Key: key, Quantity: qty}
}

// Clear empties the cart.
func Clear() Action { return Action{Type: ActionClear} }

// Load replaces the cart wholesale, used for rehydration.
func Load(lines []models.CartLine) Action { return Action{Type: ActionLoad, Lines: lines} }

// Reduce applies a to lines and returns the new lines. The input slice is
// never modified. Unknown actions return the lines unchanged.
func Reduce(lines []models.CartLine, a Action) []models.CartLine {
	switch a.Type {
	case ActionAdd:
		out := clone(lines)
		key := a.Line.Key()
		for i := range out {
			if out[i].Key() == key {
				out[i].Quantity += a.Line.Quantity
				return out
			}
		}
		return append(out, a.Line)

	case ActionRemove:
		return without(lines, a.Key)

	case ActionSetQuantity:
		if a.Quantity <= 0 {
			return without(lines, a.Key)
		}
		out := clone(lines)
		for i := range out {
			if out[i].Key() == a.Key {
				out[i].Quantity = a.Quantity
			}
		}
		return out

	case ActionClear:
		return []models.CartLine{}

	case ActionLoad:
		return clone(a.Lines)
	}
	return lines
}

// TotalItems is the sum of line quantities.
func TotalItems(lines []models.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// TotalPrice is the sum of quantity times the product price on each line.
func TotalPrice(lines []models.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// Reprice swaps each line's product snapshot for the live catalog entry.
// Lines whose product is missing from catalog keep their snapshot.
func Reprice(lines []models.CartLine, catalog map[string]models.Product) []models.CartLine {
	out := clone(lines)
	for i := range out {
		if p, ok := catalog[out[i].Product.ID]; ok {
			out[i].Product = p
		}
	}
	return out
}

// ProductIDs lists the distinct product ids in the cart.
func ProductIDs(lines []models.CartLine) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.Product.ID]; ok {
			continue
		}
		seen[l.Product.ID] = struct{}{}
		ids = append(ids, l.Product.ID)
	}
	return ids
}

func clone(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, len(lines))
	copy(out, lines)
	return out
}

func without(lines []models.CartLine, key models.CartKey) []models.CartLine {
	out := make([]models.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.Key() != key {
			out = append(out, l)
		}
	}
	return out
}
