// Package triple assembles target triples and enumerates the catalog's
// Cartesian product.
package triple

import (
	"strings"

	"trisect/internal/catalog"
)

// Separator joins adjacent present axis values in an assembled triple.
const Separator = "-"

// Assemble builds a triple from the four axis values in fixed order.
// Absent values contribute nothing; the result never starts or ends with
// the separator and never contains a doubled separator. All four absent
// yields the empty string.
func Assemble(arch, vendor, os, env string) string {
	var b strings.Builder
	for _, v := range [4]string{arch, vendor, os, env} {
		if v == catalog.Absent {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(Separator)
		}
		b.WriteString(v)
	}
	return b.String()
}
