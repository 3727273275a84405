// cmd/hydro/commands/debug.go
package commands

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"hydro/internal/hydro"
	"hydro/internal/metricstore"
	"hydro/internal/netdebug"
)

// DebugCommand loads a root module and runs its main.main function under an
// interactive Debugger, console open before PC 0 as section 6.2 requires.
// With --listen ADDR it instead serves the session over WebSocket so a
// remote client drives the same console protocol.
func DebugCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("debug requires a file argument")
	}

	var path, listen, metricsDB string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--listen":
			if i+1 >= len(args) {
				return fmt.Errorf("--listen requires an address")
			}
			i++
			listen = args[i]
		case "--metrics-db":
			if i+1 >= len(args) {
				return fmt.Errorf("--metrics-db requires a path")
			}
			i++
			metricsDB = args[i]
		default:
			if path == "" {
				path = args[i]
			}
		}
	}
	if path == "" {
		return fmt.Errorf("debug requires a file argument")
	}

	main, err := loadEntry(path)
	if err != nil {
		return err
	}

	if listen != "" {
		return serveDebugSession(main, listen)
	}

	fmt.Printf("Starting Hydro debugger for: %s\n", path)
	fmt.Println("The program will start paused. Type 'help' for commands.")

	dbg := hydro.NewDebugger(os.Stdout, os.Stdin)
	dbg.Pause()

	result, exc := main.Debug("main", funnyNumber(), nil, dbg)
	if exc != nil {
		fmt.Fprintln(os.Stderr, exc.Error())
		exc.FprintStacktrace(os.Stderr)
		os.Exit(1)
	}
	if result != nil {
		fmt.Println(result.GoString())
	}

	if metricsDB != "" {
		if err := recordMetrics(dbg.Metrics(), metricsDB); err != nil {
			fmt.Fprintf(os.Stderr, "metrics-db: %v\n", err)
		}
	}
	return nil
}

func recordMetrics(tracker *hydro.MetricTracker, path string) error {
	store, err := metricstore.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(tracker, time.Now())
}

// serveDebugSession accepts a single remote debugging connection at addr
// and drives main.main under it, exiting once the connection's session runs
// to completion.
func serveDebugSession(main *hydro.Module, addr string) error {
	server := netdebug.NewServer()
	done := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/debug", func(w http.ResponseWriter, r *http.Request) {
		session, err := server.Accept(w, r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "netdebug: %v\n", err)
			return
		}
		defer server.Close(session)
		defer close(done)

		session.Debugger.Pause()
		if _, exc := main.Debug("main", funnyNumber(), nil, session.Debugger); exc != nil {
			fmt.Fprintf(os.Stderr, "%s\n", exc.Error())
		}
	})

	fmt.Printf("Listening for a remote debug session on %s/debug\n", addr)
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-done
		srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("netdebug: %w", err)
	}
	return nil
}
