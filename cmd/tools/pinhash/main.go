package main

import (
	"fmt"
	"log"
	"os"

	"github.com/yichen-lab/congee-pos/internal/auth"
)

// Prints an argon2id hash for the given PIN, suitable for OWNER_PIN_HASH.
func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: pinhash <pin>")
	}
	hash, err := auth.HashPIN(os.Args[1])
	if err != nil {
		log.Fatalf("hash pin: %v", err)
	}
	fmt.Println(hash)
}
