package main

import (
	"fmt"
	"log"

	"github.com/xdmtree/xdmtree/config"
	"github.com/xdmtree/xdmtree/resource"
	"github.com/xdmtree/xdmtree/wtx"
	"github.com/xdmtree/xdmtree/xdm"
)

// This program walks through a typical session: open a resource, grow a
// small document, commit it, edit and roll it back, and print
// the revision history along the way.
func main() {
	opts := config.Default()
	opts.MaxNodeCount = 0
	opts.DeweyIDsEnabled = true

	mgr, err := resource.Open(opts)
	if err != nil {
		log.Fatalf("open resource: %v", err)
	}

	trx, err := mgr.OpenWriteTransaction()
	if err != nil {
		log.Fatalf("open write transaction: %v", err)
	}
	defer mgr.CloseWriteTransaction()

	fmt.Printf("bootstrapped resource at revision %d, document root %d\n",
		mgr.Revision(), mgr.DocumentRoot())

	if err := trx.MoveTo(mgr.DocumentRoot()); err != nil {
		log.Fatalf("move to document root: %v", err)
	}

	rootKey, err := trx.InsertElementAs(wtx.AsFirstChild, xdm.Name{Local: "library"})
	if err != nil {
		log.Fatalf("insert library: %v", err)
	}
	fmt.Printf("inserted element 'library' as key %d\n", rootKey)

	bookKey, err := trx.InsertElementAs(wtx.AsFirstChild, xdm.Name{Local: "book"})
	if err != nil {
		log.Fatalf("insert book: %v", err)
	}
	if _, err := trx.InsertAttribute(xdm.Name{Local: "isbn"}, []byte("0-13-110362-8")); err != nil {
		log.Fatalf("insert isbn attribute: %v", err)
	}
	if _, err := trx.InsertTextAs(wtx.AsFirstChild, []byte("The C Programming Language")); err != nil {
		log.Fatalf("insert title text: %v", err)
	}

	if err := trx.MoveTo(rootKey); err != nil {
		log.Fatalf("move to library: %v", err)
	}
	if _, err := trx.InsertElementAs(wtx.AsLeftSibling, xdm.Name{Local: "foreword"}); err != nil {
		log.Fatalf("insert foreword: %v", err)
	}

	if err := trx.Commit("add library with one book"); err != nil {
		log.Fatalf("commit: %v", err)
	}
	fmt.Printf("committed; resource now at revision %d (%d commits so far)\n",
		mgr.Revision(), mgr.CommitCount())

	if err := trx.MoveTo(bookKey); err != nil {
		log.Fatalf("move to book: %v", err)
	}
	if err := trx.SetName(xdm.Name{Local: "paperback"}); err != nil {
		log.Fatalf("rename book: %v", err)
	}
	fmt.Println("renamed 'book' to 'paperback', then rolling it back")

	if err := trx.Rollback(); err != nil {
		log.Fatalf("rollback: %v", err)
	}
	fmt.Printf("rolled back; resource at revision %d\n", mgr.Revision())

	fmt.Printf("index controller recorded %d change notifications\n", len(mgr.IndexLog()))
	fmt.Println("path summary has 'book' name path on record:", trx.GetPathSummary().Exists("book"))

	if err := trx.Close(); err != nil {
		log.Fatalf("close: %v", err)
	}
}
