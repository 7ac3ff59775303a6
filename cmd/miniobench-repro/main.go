// Command miniobench-repro replays a saved case artifact's SQL statements
// against a live SUT and oracle pair, for manual debugging of a failure a
// suite run already reported.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"miniobench/internal/repro"
	"miniobench/internal/wireclient"
)

func main() {
	caseDir := flag.String("case_dir", "", "path to a saved case artifact directory")
	sutSocket := flag.String("sut_socket", "", "SUT unix socket path (mutually exclusive with sut_addr)")
	sutAddr := flag.String("sut_addr", "", "SUT TCP host:port (mutually exclusive with sut_socket)")
	dsn := flag.String("dsn", "", "oracle DSN")
	database := flag.String("database", "", "oracle database name")
	dialTimeout := flag.Duration("dial_timeout", 10*time.Second, "SUT dial timeout")
	flag.Parse()

	if *caseDir == "" || *dsn == "" {
		fmt.Fprintln(os.Stderr, "case_dir and dsn are required")
		flag.Usage()
		os.Exit(1)
	}
	if (*sutSocket == "") == (*sutAddr == "") {
		fmt.Fprintln(os.Stderr, "exactly one of sut_socket or sut_addr is required")
		os.Exit(1)
	}

	addr := wireclient.UnixAddr(*sutSocket)
	if *sutAddr != "" {
		addr = wireclient.TCPAddr(*sutAddr)
	}

	opts := repro.Options{
		CaseDir:     *caseDir,
		SUTAddr:     addr,
		DialTimeout: *dialTimeout,
		OracleDSN:   *dsn,
		OracleDB:    *database,
	}
	if err := repro.Run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "repro failed: %v\n", err)
		os.Exit(1)
	}
}
