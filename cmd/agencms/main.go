// Package main is the entry point for agencms.
package main

func main() {
	Execute()
}
