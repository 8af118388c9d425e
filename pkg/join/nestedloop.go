package join

import (
	"minidb/pkg/buffer"
	"minidb/pkg/db"
	"minidb/pkg/storage/disk"
	"minidb/pkg/storage/page"
)

// blockSize is the number of buffered left records per probe pass.
const blockSize = 50

// NestedLoopJoin buffers blockSize left records at a time into an
// in-memory multimap and scans the right table once per full block.
// Any left records left over in the final, incomplete block are
// never probed.
type NestedLoopJoin struct {
	left, right             *disk.File
	leftSchema, rightSchema db.TableSchema
	resultSchema            db.TableSchema
	pool                    *buffer.BufferPoolManager
	idxLeft, idxRight       []int

	isComplete bool
	Stats      Stats
}

// NewNestedLoopJoin constructs a block nested-loop join over left and
// right, both already-open heap files matching leftSchema/rightSchema.
func NewNestedLoopJoin(left, right *disk.File, leftSchema, rightSchema db.TableSchema, pool *buffer.BufferPoolManager) *NestedLoopJoin {
	idxLeft, idxRight := joinAttributeIndexes(leftSchema, rightSchema)
	return &NestedLoopJoin{
		left: left, right: right,
		leftSchema: leftSchema, rightSchema: rightSchema,
		resultSchema: ResultSchema(leftSchema, rightSchema),
		pool:         pool,
		idxLeft:      idxLeft, idxRight: idxRight,
	}
}

// ResultSchema returns the join's output schema.
func (j *NestedLoopJoin) ResultSchema() db.TableSchema { return j.resultSchema }

// Execute runs the join once, writing joined tuples to resultFile. A
// second call on a completed join is a no-op returning true.
func (j *NestedLoopJoin) Execute(numAvailableBufPages int, resultFile *disk.File) (bool, error) {
	if j.isComplete {
		return true, nil
	}
	j.Stats = Stats{}

	multimap := make(map[string][]string)
	blockCount := 0

	for id := page.ID(0); id < j.left.PageCount(); id++ {
		leftPage, err := j.pool.ReadPage(j.left, id)
		if err != nil {
			return false, err
		}
		resultID, resultPage, err := j.pool.AllocPage(resultFile)
		if err != nil {
			j.pool.UnpinPage(j.left, id, false)
			return false, err
		}

		it := leftPage.Begin()
		for {
			leftRecord, ok := it.Next()
			if !ok {
				break
			}
			key := joinKey(leftRecord, j.idxLeft)
			multimap[key] = append(multimap[key], leftRecord)
			blockCount++

			if blockCount%blockSize != 0 {
				continue
			}
			j.Stats.NumIOs++
			if err := j.probe(multimap, resultPage); err != nil {
				j.pool.UnpinPage(j.left, id, false)
				j.pool.UnpinPage(resultFile, resultID, true)
				return false, err
			}
			multimap = make(map[string][]string)
		}

		if err := j.pool.UnpinPage(j.left, id, false); err != nil {
			return false, err
		}
		if err := j.pool.UnpinPage(resultFile, resultID, true); err != nil {
			return false, err
		}
		if err := j.pool.FlushFile(resultFile); err != nil {
			return false, err
		}
	}

	j.Stats.NumUsedBufPages = blockSize + 1
	j.isComplete = true
	return true, nil
}

// probe scans the entire right table against the currently buffered
// block, writing matches into resultPage.
func (j *NestedLoopJoin) probe(multimap map[string][]string, resultPage *page.Page) error {
	rightScanner := db.NewTableScanner(j.right, j.pool)
	return rightScanner.Each(func(rightRecord string) error {
		key := joinKey(rightRecord, j.idxRight)
		for _, leftRecord := range multimap[key] {
			joined := buildJoinedTuple(leftRecord, rightRecord, j.idxRight)
			if _, err := resultPage.InsertRecord("result\t" + joined); err != nil {
				return err
			}
			j.Stats.NumResultTuples++
		}
		j.Stats.NumIOs++
		return nil
	})
}
