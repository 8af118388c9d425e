package join

import (
	"strings"

	"minidb/pkg/db"
)

// joinAttributeIndexes returns the ordered intersection of left and
// right attribute names, together with each name's positional index
// in its own schema.
func joinAttributeIndexes(left, right db.TableSchema) (idxLeft, idxRight []int) {
	for i, la := range left.Attrs {
		for j, ra := range right.Attrs {
			if la.Name == ra.Name {
				idxLeft = append(idxLeft, i)
				idxRight = append(idxRight, j)
			}
		}
	}
	return
}

// splitTuple splits a wire-form tuple "tableName\tv0\tv1\t..." on tab.
func splitTuple(record string) []string {
	return strings.Split(record, "\t")
}

// joinKey concatenates (with no separator) the values at the given
// schema-attribute positions. Token p+1 holds the value for schema
// position p, since token 0 is the table name.
func joinKey(record string, idx []int) string {
	tokens := splitTuple(record)
	var sb strings.Builder
	for _, i := range idx {
		sb.WriteString(tokens[i+1])
	}
	return sb.String()
}

// buildJoinedTuple concatenates every value token of leftRecord
// (skipping its table name) with every value token of rightRecord
// except the join attributes named by idxRight, each tab-terminated.
func buildJoinedTuple(leftRecord, rightRecord string, idxRight []int) string {
	var sb strings.Builder
	leftTokens := splitTuple(leftRecord)
	for j := 1; j < len(leftTokens); j++ {
		sb.WriteString(leftTokens[j])
		sb.WriteByte('\t')
	}
	rightTokens := splitTuple(rightRecord)
	for j := 1; j < len(rightTokens); j++ {
		if containsInt(idxRight, j-1) {
			continue
		}
		sb.WriteString(rightTokens[j])
		sb.WriteByte('\t')
	}
	return sb.String()
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
