package join

import (
	"minidb/pkg/buffer"
	"minidb/pkg/db"
	"minidb/pkg/storage/disk"
)

// OnePassJoin builds an in-memory multimap over the entire left table
// keyed by the join attributes, then probes it with every right-table
// record. The caller's buffer budget is informational only; this
// operator materializes the whole left side in memory regardless.
type OnePassJoin struct {
	left, right            *disk.File
	leftSchema, rightSchema db.TableSchema
	resultSchema           db.TableSchema
	pool                   *buffer.BufferPoolManager
	idxLeft, idxRight      []int

	isComplete bool
	Stats      Stats
}

// NewOnePassJoin constructs a one-pass join over left and right, both
// already-open heap files matching leftSchema/rightSchema.
func NewOnePassJoin(left, right *disk.File, leftSchema, rightSchema db.TableSchema, pool *buffer.BufferPoolManager) *OnePassJoin {
	idxLeft, idxRight := joinAttributeIndexes(leftSchema, rightSchema)
	return &OnePassJoin{
		left: left, right: right,
		leftSchema: leftSchema, rightSchema: rightSchema,
		resultSchema: ResultSchema(leftSchema, rightSchema),
		pool:         pool,
		idxLeft:      idxLeft, idxRight: idxRight,
	}
}

// ResultSchema returns the join's output schema.
func (j *OnePassJoin) ResultSchema() db.TableSchema { return j.resultSchema }

// Execute runs the join once, writing joined tuples to resultFile. A
// second call on a completed join is a no-op returning true.
// numAvailableBufPages is accepted to match the join operator
// contract but not consulted.
func (j *OnePassJoin) Execute(numAvailableBufPages int, resultFile *disk.File) (bool, error) {
	if j.isComplete {
		return true, nil
	}
	j.Stats = Stats{}

	multimap := make(map[string][]string)
	leftScanner := db.NewTableScanner(j.left, j.pool)
	err := leftScanner.Each(func(record string) error {
		key := joinKey(record, j.idxLeft)
		multimap[key] = append(multimap[key], record)
		j.Stats.NumIOs++
		j.Stats.NumUsedBufPages++
		return nil
	})
	if err != nil {
		return false, err
	}

	rightScanner := db.NewTableScanner(j.right, j.pool)
	err = rightScanner.Each(func(record string) error {
		id, resultPage, err := j.pool.AllocPage(resultFile)
		if err != nil {
			return err
		}

		key := joinKey(record, j.idxRight)
		for _, leftRecord := range multimap[key] {
			joined := buildJoinedTuple(leftRecord, record, j.idxRight)
			if _, err := resultPage.InsertRecord("result\t" + joined); err != nil {
				return err
			}
			j.Stats.NumResultTuples++
		}

		if err := j.pool.UnpinPage(resultFile, id, true); err != nil {
			return err
		}
		if err := j.pool.FlushFile(resultFile); err != nil {
			return err
		}
		j.Stats.NumIOs++
		j.Stats.NumUsedBufPages++
		return nil
	})
	if err != nil {
		return false, err
	}

	j.isComplete = true
	return true, nil
}
