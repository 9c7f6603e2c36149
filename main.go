// minichat is a Minitel-style terminal chat client.
package main

import (
	"fmt"
	"os"

	"github.com/linanwx/minichat/cmd"
	"github.com/linanwx/minichat/logger"
)

func main() {
	err := cmd.Execute()
	logger.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
