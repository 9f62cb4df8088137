package core

import (
	"fmt"
	"strconv"
	"strings"
)

// nextSeqID returns max(numeric part of ids)+1 formatted with prefix and
// zero-padded to width. Ids that are not numeric after the prefix are ignored.
func nextSeqID(ids []string, prefix string, width int) string {
	highest := 0
	for _, id := range ids {
		n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%0*d", prefix, width, highest+1)
}

func customerIDs(cs []Customer) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return ids
}

func supplierIDs(ss []Supplier) []string {
	ids := make([]string, len(ss))
	for i, s := range ss {
		ids[i] = s.ID
	}
	return ids
}

func productIDs(ps []Product) []string {
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
	}
	return ids
}

func groupIDs(gs []Group) []string {
	ids := make([]string, len(gs))
	for i, g := range gs {
		ids[i] = g.ID
	}
	return ids
}
