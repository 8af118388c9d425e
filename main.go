// Command minidb builds the r/s example tables, runs both join
// operators over them, and prints each operator's running statistics
// and result contents. It is a direct stand-in for the lab's own
// driver program, not a general-purpose database server.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"minidb/pkg/buffer"
	"minidb/pkg/db"
	"minidb/pkg/join"
	"minidb/pkg/storage/disk"
)

const availableBufPages = 256

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	pool := buffer.NewBufferPoolManager(availableBufPages)
	catalog := db.NewCatalog("lab3")

	leftFile, rightFile := createDatabase(pool, catalog)

	logrus.Info("Test One-Pass Join ...")
	testOnePassJoin(pool, catalog, leftFile, rightFile)

	logrus.Info("Test Nested-Loop Join ...")
	testNestedLoopJoin(pool, catalog, leftFile, rightFile)

	if err := pool.Close(); err != nil {
		logrus.WithError(err).Fatal("final flush failed")
	}
	logrus.Info("Test Completed")
}

func createDatabase(pool *buffer.BufferPoolManager, catalog *db.Catalog) (*disk.File, *disk.File) {
	leftSchema, err := db.TableSchemaFromSQL("CREATE TABLE r (a CHAR(8) NOT NULL UNIQUE, b INT);")
	if err != nil {
		logrus.WithError(err).Fatal("parsing left table schema")
	}
	rightSchema, err := db.TableSchemaFromSQL("CREATE TABLE s (b INT UNIQUE NOT NULL, c VARCHAR(8));")
	if err != nil {
		logrus.WithError(err).Fatal("parsing right table schema")
	}
	leftSchema.Print(os.Stdout)
	rightSchema.Print(os.Stdout)

	const leftFilename, rightFilename = "r.tbl", "s.tbl"
	removeIfExists(leftFilename)
	removeIfExists(rightFilename)

	leftFile, err := disk.Create(leftFilename)
	if err != nil {
		logrus.WithError(err).Fatal("creating left table file")
	}
	rightFile, err := disk.Create(rightFilename)
	if err != nil {
		logrus.WithError(err).Fatal("creating right table file")
	}

	catalog.AddTableSchema(leftSchema, leftFilename)
	catalog.AddTableSchema(rightSchema, rightFilename)

	const leftRows, rightRows = 500, 100

	fmt.Printf("creating tuples for %s...\n", leftFilename)
	for i := 0; i < leftRows; i++ {
		sql := fmt.Sprintf("INSERT INTO r VALUES ('r%d', %d);", i, i%rightRows)
		tuple, err := db.CreateTupleFromSQL(sql, catalog)
		if err != nil {
			logrus.WithError(err).Fatal("building left tuple")
		}
		db.InsertTuple(tuple, leftFile, pool)
	}

	fmt.Printf("creating tuples for %s...\n", rightFilename)
	for i := 0; i < rightRows; i++ {
		sql := fmt.Sprintf("INSERT INTO s VALUES (%d, 's%d');", i, i)
		tuple, err := db.CreateTupleFromSQL(sql, catalog)
		if err != nil {
			logrus.WithError(err).Fatal("building right tuple")
		}
		db.InsertTuple(tuple, rightFile, pool)
	}

	logrus.WithField("pages", humanize.Comma(int64(leftFile.PageCount()+rightFile.PageCount()))).
		Info("tables populated")

	return leftFile, rightFile
}

func testOnePassJoin(pool *buffer.BufferPoolManager, catalog *db.Catalog, leftFile, rightFile *disk.File) {
	leftID, _ := catalog.TableID("r")
	rightID, _ := catalog.TableID("s")
	leftSchema, _ := catalog.TableSchema(leftID)
	rightSchema, _ := catalog.TableSchema(rightID)

	operator := join.NewOnePassJoin(leftFile, rightFile, leftSchema, rightSchema, pool)

	filename := leftSchema.TableName + "_OPJ_" + rightSchema.TableName + ".tbl"
	removeIfExists(filename)
	resultFile, err := disk.Create(filename)
	if err != nil {
		logrus.WithError(err).Fatal("creating one-pass result file")
	}

	if _, err := operator.Execute(100, resultFile); err != nil {
		logrus.WithError(err).Fatal("running one-pass join")
	}

	fmt.Println(operator.Stats.String())
	printTable(pool, resultFile)
}

func testNestedLoopJoin(pool *buffer.BufferPoolManager, catalog *db.Catalog, leftFile, rightFile *disk.File) {
	leftID, _ := catalog.TableID("r")
	rightID, _ := catalog.TableID("s")
	leftSchema, _ := catalog.TableSchema(leftID)
	rightSchema, _ := catalog.TableSchema(rightID)

	operator := join.NewNestedLoopJoin(leftFile, rightFile, leftSchema, rightSchema, pool)

	filename := leftSchema.TableName + "_NLJ_" + rightSchema.TableName + ".tbl"
	removeIfExists(filename)
	resultFile, err := disk.Create(filename)
	if err != nil {
		logrus.WithError(err).Fatal("creating nested-loop result file")
	}

	if _, err := operator.Execute(10, resultFile); err != nil {
		logrus.WithError(err).Fatal("running nested-loop join")
	}

	fmt.Println(operator.Stats.String())
	printTable(pool, resultFile)
}

func printTable(pool *buffer.BufferPoolManager, file *disk.File) {
	scanner := db.NewTableScanner(file, pool)
	err := scanner.Each(func(record string) error {
		fmt.Println(strings.Join(strings.Split(record, "\t"), " | "))
		return nil
	})
	if err != nil {
		logrus.WithError(err).Fatal("scanning result table")
	}
}

func removeIfExists(filename string) {
	if err := disk.Remove(filename); err != nil && err != disk.ErrFileNotFound {
		logrus.WithError(err).Fatalf("removing %s", filename)
	}
}
