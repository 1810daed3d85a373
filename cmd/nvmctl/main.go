// nvmctl inspects and manipulates device state store images.
package main

func main() {
	Execute()
}
