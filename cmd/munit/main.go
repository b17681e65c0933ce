// Package main is the munit command line tool: manifest validation,
// schema export, and remote resource prefetching for MUNIT models.
package main

func main() {
	Execute()
}
