package orderform

import (
	"fmt"
	"strings"
)

// ValidationError carries the reasons a form was rejected at submit time.
// The messages are user-facing and shown as a joined list.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Reasons, "; ")
}

// Validate runs the submit-time checks: the form must contain at least one
// valid item, and no two valid items may reference the same product. The
// form state is left untouched so the user can correct and retry.
func (f *Form) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var reasons []string
	seen := make(map[string]bool)
	validCount := 0

	for _, it := range f.items {
		if !it.valid() {
			continue
		}
		if seen[it.productID] {
			name := it.productID
			if n, ok := f.catalog.Name(it.productID); ok {
				name = n
			}
			reasons = append(reasons, fmt.Sprintf("el producto %q está duplicado", name))
			continue
		}
		seen[it.productID] = true
		validCount++
	}

	if validCount == 0 {
		reasons = append([]string{"debe agregar al menos un producto válido a la orden"}, reasons...)
	}
	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}
