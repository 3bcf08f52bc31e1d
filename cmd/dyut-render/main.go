// Command dyut-render renders research reports and scripts from files or stdin.
package main

func main() {
	Execute()
}
