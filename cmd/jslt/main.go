// Command jslt applies JSLT templates to JSON and YAML documents.
//
// Usage:
//
//	jslt apply --template transform.jslt input.json
//	echo '{"a": 1}' | jslt apply --expr '{"b": .a}'
//	jslt check transform.jslt
//	jslt functions
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
