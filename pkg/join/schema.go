// Package join implements the two join operators that drive the
// buffer pool under realistic access patterns: a one-pass in-memory
// hash join and a block nested-loop join. Both share a result schema
// projection and a tab-separated tuple format whose first token is
// the owning table's name; joined output tuples start with "result".
package join

import "minidb/pkg/db"

// ResultSchema computes a join's output schema: every left attribute
// in order, followed by every right attribute whose name does not
// already appear on the left. Names are compared by exact string
// equality. The result is always named TEMP_TABLE and marked temp.
func ResultSchema(left, right db.TableSchema) db.TableSchema {
	attrs := make([]db.Attribute, 0, left.AttrCount()+right.AttrCount())
	attrs = append(attrs, left.Attrs...)
	for _, a := range right.Attrs {
		if !left.HasAttr(a.Name) {
			attrs = append(attrs, a)
		}
	}
	return db.TableSchema{TableName: "TEMP_TABLE", Attrs: attrs, Temp: true}
}
