package main

// main delegates to Execute, which runs the Cobra command tree defined in root.go.
func main() {
	Execute()
}
