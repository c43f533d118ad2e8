// Command emailcrawl enriches a list of businesses with contact email addresses found on
// their websites.
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
